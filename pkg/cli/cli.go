// Package cli implements the envx command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/mattn/go-isatty"
	_ "github.com/tliron/commonlog/simple"

	"github.com/funvibe/envx/internal/config"
	"github.com/funvibe/envx/internal/logging"
)

var log = logging.Get("cli")

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// errReported marks a failure whose details were already written to stderr.
var errReported = errors.New("reported")

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	name  string
	args  string
	opts  string
	about string
	run   func(a *app, opts options, args []string) error
}

var commands = []*command{
	{"run", "[-e env] [-d dir] [-f format] [-r] [file]", "e:d:f:r", "run a script and print its environment", runCommand},
	{"check", "[file...]", "e:d:", "compile scripts and report diagnostics", checkCommand},
	{"disasm", "[-e env] [-d dir] [file]", "e:d:", "print the bytecode of a script", disasmCommand},
	{"call", "[-e env] [-d dir] name [args...]", "e:d:", "run a script, then call one of its functions", callCommand},
	{"build", "[-e env] [-d dir] [-o out] [file]", "e:d:o:", "compile a script into a bundle", buildCommand},
	{"exec", "[-f format] bundle", "f:", "run a bundle and print its environment", execCommand},
	{"history", "[-e env] [-n count]", "e:n:", "list recorded snapshots", historyCommand},
	{"diff", "[-e env]", "e:", "compare the two newest snapshots", diffCommand},
}

func findCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}
	return nil
}

// options holds the last value of each command option; flags map to "".
type options map[rune]string

func (o options) has(opt rune) bool {
	_, ok := o[opt]
	return ok
}

// app is the state shared by commands for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	color  bool
}

// Run executes the command line args (without the program name) and
// returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	argv := append([]string{"envx"}, args...)
	globals, optind, err := getopt.Getopts(argv, "c:hv")
	if err != nil {
		fmt.Fprintf(stderr, "envx: %s\n", err)
		printUsage(stderr)
		return ExitUsage
	}

	var configPath string
	verbosity := 0
	for _, opt := range globals {
		switch opt.Option {
		case 'c':
			configPath = opt.Value
		case 'h':
			printUsage(stdout)
			return ExitOK
		case 'v':
			verbosity++
		}
	}

	rest := argv[optind:]
	if len(rest) == 0 {
		printUsage(stderr)
		return ExitUsage
	}
	if rest[0] == "help" {
		printUsage(stdout)
		return ExitOK
	}
	cmd := findCommand(rest[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "envx: unknown command %q\n", rest[0])
		printUsage(stderr)
		return ExitUsage
	}

	parsed, cmdind, err := getopt.Getopts(rest, cmd.opts+"v")
	if err != nil {
		fmt.Fprintf(stderr, "envx %s: %s\nusage: envx %s %s\n", cmd.name, err, cmd.name, cmd.args)
		return ExitUsage
	}
	opts := options{}
	for _, opt := range parsed {
		if opt.Option == 'v' {
			verbosity++
			continue
		}
		opts[opt.Option] = opt.Value
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "envx: %s\n", err)
		return ExitFailure
	}
	logging.Configure(cfg.Log.Verbosity+verbosity, cfg.LogFile())
	log.Debugf("command %s, config %q", cmd.name, cfg.Path)

	a := &app{stdout: stdout, stderr: stderr, cfg: cfg, color: useColor(cfg.Color, stderr)}
	err = cmd.run(a, opts, rest[cmdind:])

	var usage *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "envx %s: %s\nusage: envx %s %s\n", cmd.name, usage.msg, cmd.name, cmd.args)
		return ExitUsage
	case errors.Is(err, errReported):
		return ExitFailure
	}
	fmt.Fprintf(stderr, "envx %s: %s\n", cmd.name, err)
	return ExitFailure
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.FindAndLoad(".")
}

// useColor resolves the color setting. auto colors only a terminal stderr
// and honors NO_COLOR.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: envx [-c config] [-v] <command> [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, len(commands))
	width := 0
	for i, c := range commands {
		names[i] = c.name
		if len(c.name) > width {
			width = len(c.name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c := findCommand(name)
		fmt.Fprintf(w, "  %-*s  %s\n", width, c.name, c.about)
		fmt.Fprintf(w, "  %-*s    envx %s %s\n", width, "", c.name, c.args)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "The environment name comes from -e, then %s, then the config (default %q).\n",
		strings.Join(config.EnvNameVariables, ", "), config.DefaultEnvName)
}
