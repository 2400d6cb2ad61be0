package symbols

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Command is an operation an action strand applies to its data strand.
type Command struct {
	Code int
	Name string
	Note string
	List *Command
}

// Variant returns the list form of the command when one exists and list is set.
func (c Command) Variant(list bool) Command {
	if list && c.List != nil {
		return *c.List
	}
	return Command{Code: c.Code, Name: c.Name, Note: c.Note}
}

// CommandTable maps vertical values to commands.
type CommandTable struct {
	byCode map[int]Command
}

type commandYAML struct {
	Name string       `yaml:"name"`
	Note string       `yaml:"note"`
	List *commandYAML `yaml:"list,omitempty"`
}

//go:embed commands.yml
var commandsYAML []byte

var (
	defaultCommandsOnce sync.Once
	defaultCommands     *CommandTable
	defaultCommandsErr  error
)

// DefaultCommands returns the built-in command table.
func DefaultCommands() *CommandTable {
	defaultCommandsOnce.Do(func() {
		defaultCommands, defaultCommandsErr = LoadCommands(bytes.NewReader(commandsYAML))
	})
	if defaultCommandsErr != nil {
		panic(fmt.Sprintf("symbols: embedded commands: %v", defaultCommandsErr))
	}
	return defaultCommands
}

// LoadCommands decodes a command table keyed by integer code.
func LoadCommands(r io.Reader) (*CommandTable, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw map[string]commandYAML
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("symbols: command table is empty")
		}
		return nil, fmt.Errorf("symbols: parse commands: %w", err)
	}

	table := &CommandTable{byCode: make(map[int]Command, len(raw))}
	for key, entry := range raw {
		code, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("symbols: command code %q is not an integer", key)
		}
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("symbols: command %d has no name", code)
		}
		cmd := Command{Code: code, Name: entry.Name, Note: entry.Note}
		if entry.List != nil {
			if entry.List.List != nil {
				return nil, fmt.Errorf("symbols: command %d: list form cannot nest", code)
			}
			if strings.TrimSpace(entry.List.Name) == "" {
				return nil, fmt.Errorf("symbols: command %d: list form has no name", code)
			}
			cmd.List = &Command{Code: code, Name: entry.List.Name, Note: entry.List.Note}
		}
		table.byCode[code] = cmd
	}
	return table, nil
}

// CommandFor returns the command registered for code.
func (t *CommandTable) CommandFor(code int) (Command, bool) {
	cmd, ok := t.byCode[code]
	return cmd, ok
}

// Codes returns every registered code in ascending order.
func (t *CommandTable) Codes() []int {
	codes := make([]int, 0, len(t.byCode))
	for code := range t.byCode {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
