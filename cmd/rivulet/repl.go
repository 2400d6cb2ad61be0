package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jwoLondon/Rivulet/pkg/describe"
	"github.com/jwoLondon/Rivulet/pkg/driver"
	"github.com/jwoLondon/Rivulet/pkg/interpreter"
	"github.com/jwoLondon/Rivulet/pkg/parser"
	"github.com/jwoLondon/Rivulet/pkg/runtime"
)

const (
	historyFile = ".rivulet_history"
	promptMain  = "riv> "
	promptCont  = "...> "
)

const replHelp = `Enter glyph rows and finish with an empty line. Commands:
  :state     print every list
  :describe  print the last program as pseudocode
  :reset     clear all lists
  :quit      leave the REPL`

// session holds what persists between REPL entries.
type session struct {
	cfg       *driver.Config
	parseOpts []parser.Option
	interp    *interpreter.Interpreter
	state     *runtime.State
	last      *parser.Program
}

func newSession(cfg *driver.Config) (*session, error) {
	parseOpts, err := cfg.ParseOptions()
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:       cfg,
		parseOpts: parseOpts,
		interp:    interpreter.New(interpreterOptions(cfg)...),
		state:     runtime.NewState(nil),
	}, nil
}

// eval runs src against the accumulated state. A failed entry leaves the state
// as it was before the entry.
func (s *session) eval(ctx context.Context, src string) error {
	program, err := parser.Parse(src, s.parseOpts...)
	if err != nil {
		return err
	}
	before := s.state.Clone()
	if err := s.interp.Exec(ctx, program, s.state); err != nil {
		s.state.Restore(before)
		return err
	}
	s.last = program
	return nil
}

// command handles a ":" line. It reports false when the session should end.
func (s *session) command(w io.Writer, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q", ":exit":
		return false
	case ":state":
		fmt.Fprintln(w, s.state)
	case ":reset":
		s.state = runtime.NewState(nil)
		s.last = nil
	case ":describe":
		if s.last == nil {
			fmt.Fprintln(w, "no program entered yet")
			break
		}
		if err := describe.Program(w, s.last); err != nil {
			fmt.Fprintf(w, "%v\n", err)
		}
	case ":help":
		fmt.Fprintln(w, replHelp)
	default:
		fmt.Fprintln(w, "unknown command. Type :help for a list.")
	}
	return true
}

func runRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to rivulet.yml (default: searched upwards from the working directory)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(stderr, "rivulet repl requires an interactive terminal")
		return exitError
	}

	cfg, err := loadConfig(*configPath, ".")
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	sess, err := newSession(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	histPath := cfg.History
	if histPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, historyFile)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintln(stdout, cliToolVersion)
	fmt.Fprintln(stdout, replHelp)
	ctx := context.Background()
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if !sess.command(stdout, src) {
				return exitOK
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", "\\n"))
		if err := sess.eval(ctx, src); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			continue
		}
		printOutput(cfg.Output, sess.state)
	}
}

// readEntry collects rows until an empty line. A ":" command is a single line.
// It reports false on end of input.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
}
