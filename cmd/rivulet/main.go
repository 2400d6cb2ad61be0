package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goforj/godump"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/term"

	"github.com/jwoLondon/Rivulet/pkg/describe"
	"github.com/jwoLondon/Rivulet/pkg/driver"
	"github.com/jwoLondon/Rivulet/pkg/interpreter"
	"github.com/jwoLondon/Rivulet/pkg/parser"
	"github.com/jwoLondon/Rivulet/pkg/runtime"
)

const cliToolVersion = "rivulet 0.0.0-dev"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var subcommands = []string{"run", "parse", "describe", "repl", "watch", "version", "help"}

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return exitOK
	case "run":
		return runProgram(args[1:])
	case "parse":
		return inspectProgram("parse", args[1:], describe.Summary)
	case "describe":
		return inspectProgram("describe", args[1:], describe.Program)
	case "repl":
		return runRepl(args[1:])
	case "watch":
		return runWatch(args[1:])
	}

	if looksLikeProgramPath(args[0]) {
		return runProgram(args)
	}
	fmt.Fprintf(stderr, "unknown command %q\n", args[0])
	if suggestion := suggestCommand(args[0]); suggestion != "" {
		fmt.Fprintf(stderr, "did you mean %q?\n", suggestion)
	}
	printUsage(stderr)
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  rivulet run [-output mode] [-verbose] [-max-passes n] [-config file] <file.riv>")
	fmt.Fprintln(w, "  rivulet <file.riv>")
	fmt.Fprintln(w, "  rivulet parse [-config file] <file.riv>")
	fmt.Fprintln(w, "  rivulet describe [-config file] <file.riv>")
	fmt.Fprintln(w, "  rivulet watch [run flags] <file.riv>")
	fmt.Fprintln(w, "  rivulet repl [-config file]")
	fmt.Fprintln(w, "  rivulet version")
}

// suggestCommand returns the closest subcommand to name, or "" when nothing
// is close.
func suggestCommand(name string) string {
	ranks := fuzzy.RankFindFold(name, subcommands)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func looksLikeProgramPath(arg string) bool {
	if strings.HasSuffix(arg, ".riv") {
		return true
	}
	if strings.ContainsRune(arg, filepath.Separator) {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// runOptions are the flags shared by run and watch.
type runOptions struct {
	path       string
	output     string
	verbose    bool
	maxPasses  int
	configPath string
}

func parseRunFlags(name string, args []string) (*runOptions, int, bool) {
	opts := &runOptions{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.output, "output", "", "output mode: none, numeric or unicode")
	fs.BoolVar(&opts.verbose, "verbose", false, "trace every glyph and dump the program state")
	fs.IntVar(&opts.maxPasses, "max-passes", -1, "fail a block that needs more passes than this (0 means no limit)")
	fs.StringVar(&opts.configPath, "config", "", "path to rivulet.yml (default: searched upwards from the program)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exitOK, false
		}
		return nil, exitUsage, false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "rivulet %s requires exactly one program file\n", name)
		return nil, exitUsage, false
	}
	opts.path = fs.Arg(0)
	return opts, exitOK, true
}

// settings merges rivulet.yml, the environment and the command-line flags,
// in increasing order of precedence.
func (o *runOptions) settings() (*driver.Config, error) {
	cfg, err := loadConfig(o.configPath, filepath.Dir(o.path))
	if err != nil {
		return nil, err
	}
	if o.output != "" {
		mode, err := interpreter.ParseOutputMode(o.output)
		if err != nil {
			return nil, err
		}
		cfg.Output = mode
	}
	if o.verbose {
		cfg.Verbose = true
	}
	if o.maxPasses >= 0 {
		cfg.MaxPasses = o.maxPasses
	}
	return cfg, nil
}

func loadConfig(explicit, start string) (*driver.Config, error) {
	if explicit == "" {
		return driver.ResolveConfig(start)
	}
	cfg, err := driver.LoadConfig(explicit)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadProgram(cfg *driver.Config, path string) (*parser.Program, error) {
	parseOpts, err := cfg.ParseOptions()
	if err != nil {
		return nil, err
	}
	return driver.LoadProgram(path, parseOpts...)
}

func runProgram(args []string) int {
	opts, code, ok := parseRunFlags("run", args)
	if !ok {
		return code
	}
	cfg, err := opts.settings()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, cfg, opts.path)
}

// execute parses and runs the program at path, printing its output list.
func execute(ctx context.Context, cfg *driver.Config, path string) int {
	program, err := loadProgram(cfg, path)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	interp := interpreter.New(interpreterOptions(cfg)...)
	state, err := interp.Run(ctx, program)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	printOutput(cfg.Output, state)
	return exitOK
}

func interpreterOptions(cfg *driver.Config) []interpreter.Option {
	opts := cfg.InterpreterOptions()
	if cfg.Verbose {
		opts = append(opts, interpreter.WithDebugHook(traceGlyph))
	}
	return opts
}

func traceGlyph(event interpreter.GlyphEvent) {
	fmt.Fprintf(stderr, "glyph %d (level %d) pass %d: %s\n", event.Glyph.Index, event.Glyph.Level, event.Pass, event.Outcome)
	godump.Fdump(stderr, event.State.Snapshot())
}

func printOutput(mode interpreter.OutputMode, state *runtime.State) {
	text, ok := interpreter.Render(mode, state)
	if !ok {
		return
	}
	if mode == interpreter.OutputUnicode && !isTerminal(stdout) {
		fmt.Fprint(stdout, text)
		return
	}
	fmt.Fprintln(stdout, text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func inspectProgram(name string, args []string, render func(io.Writer, *parser.Program) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to rivulet.yml (default: searched upwards from the program)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "rivulet %s requires exactly one program file\n", name)
		return exitUsage
	}
	path := fs.Arg(0)

	cfg, err := loadConfig(*configPath, filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	program, err := loadProgram(cfg, path)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	if err := render(stdout, program); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	return exitOK
}
