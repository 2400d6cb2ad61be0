package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwoLondon/Rivulet/pkg/interpreter"
	"github.com/jwoLondon/Rivulet/pkg/parser"
	"github.com/jwoLondon/Rivulet/pkg/symbols"
)

const (
	// ConfigFileName is looked up from the program's directory upwards.
	ConfigFileName = "rivulet.yml"
	// EnvOutput overrides the configured output mode.
	EnvOutput = "RIVULET_OUTPUT"
)

// ErrConfigNotFound is wrapped when no rivulet.yml exists above a directory.
var ErrConfigNotFound = errors.New("config not found")

// Config holds run settings from rivulet.yml. Paths are absolute.
type Config struct {
	Path      string
	Output    interpreter.OutputMode
	Verbose   bool
	MaxPasses int
	Lexicon   string
	Commands  string
	History   string
}

type configFile struct {
	Output    string `yaml:"output"`
	Verbose   bool   `yaml:"verbose"`
	MaxPasses *int   `yaml:"max_passes"`
	Lexicon   string `yaml:"lexicon"`
	Commands  string `yaml:"commands"`
	History   string `yaml:"history"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig is used when no rivulet.yml is found.
func DefaultConfig() *Config {
	return &Config{Output: interpreter.OutputNumeric}
}

// LoadConfig parses and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg := DefaultConfig()
			cfg.Path = absPath
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	return raw.toConfig(absPath)
}

func (raw configFile) toConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.Verbose = raw.Verbose

	var errs ValidationError
	if raw.Output != "" {
		mode, err := interpreter.ParseOutputMode(raw.Output)
		if err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("output: %v", err))
		}
		cfg.Output = mode
	}
	if raw.MaxPasses != nil {
		if *raw.MaxPasses < 0 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("max_passes must be zero or positive, got %d", *raw.MaxPasses))
		}
		cfg.MaxPasses = *raw.MaxPasses
	}

	dir := filepath.Dir(path)
	for _, field := range []struct {
		key   string
		value string
		dst   *string
	}{
		{"lexicon", raw.Lexicon, &cfg.Lexicon},
		{"commands", raw.Commands, &cfg.Commands},
		{"history", raw.History, &cfg.History},
	} {
		value := strings.TrimSpace(field.value)
		if value == "" {
			continue
		}
		*field.dst = resolvePath(dir, value)
		if field.key == "history" {
			continue
		}
		if info, err := os.Stat(*field.dst); err != nil || info.IsDir() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: %s is not a readable file", field.key, *field.dst))
		}
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

func resolvePath(dir, value string) string {
	if strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, value[2:])
		}
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(dir, value)
}

// FindConfig walks from start towards the filesystem root looking for rivulet.yml.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ConfigFileName, origin, ErrConfigNotFound)
		}
		dir = parent
	}
}

// ResolveConfig loads the nearest rivulet.yml above start, falling back to the
// defaults, and applies environment overrides.
func ResolveConfig(start string) (*Config, error) {
	cfg := DefaultConfig()
	path, err := FindConfig(start)
	switch {
	case err == nil:
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrConfigNotFound):
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	if value, ok := os.LookupEnv(EnvOutput); ok && strings.TrimSpace(value) != "" {
		mode, err := interpreter.ParseOutputMode(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvOutput, err)
		}
		c.Output = mode
	}
	return nil
}

// ParseOptions loads the table overrides named by the config.
func (c *Config) ParseOptions() ([]parser.Option, error) {
	var opts []parser.Option
	if c.Lexicon != "" {
		table, err := loadFile(c.Lexicon, symbols.LoadTable)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithTable(table))
	}
	if c.Commands != "" {
		commands, err := loadFile(c.Commands, symbols.LoadCommands)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithCommands(commands))
	}
	return opts, nil
}

// InterpreterOptions translates the run settings into interpreter options.
func (c *Config) InterpreterOptions() []interpreter.Option {
	return []interpreter.Option{interpreter.WithMaxPasses(c.MaxPasses)}
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	value, err := load(file)
	if err != nil {
		return zero, fmt.Errorf("config: %s: %w", path, err)
	}
	return value, nil
}
