package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/envx/internal/backend"
	"github.com/funvibe/envx/internal/config"
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/export"
	"github.com/funvibe/envx/internal/store"
	"github.com/funvibe/envx/internal/vm"
)

const timeLayout = "2006-01-02 15:04:05"

// target is the script a command works on and the environment it defines.
type target struct {
	env  string
	file string
}

// resolveTarget picks the script: an explicit file, whose name gives the
// environment unless -e is set, or {dir}/{env}.envx for the resolved env.
func (a *app) resolveTarget(opts options, args []string) (target, error) {
	if len(args) > 0 {
		file := args[0]
		env := opts['e']
		if env == "" {
			env = config.TrimSourceExt(filepath.Base(file))
		}
		return target{env: env, file: file}, nil
	}

	env, err := a.envName(opts)
	if err != nil {
		return target{}, err
	}
	dir := opts['d']
	if dir == "" {
		dir = a.cfg.SourceDir()
	}
	return target{env: env, file: filepath.Join(dir, env+config.SourceFileExt)}, nil
}

func (a *app) envName(opts options) (string, error) {
	env := config.ResolveEnv(opts['e'], a.cfg)
	if !config.IsEnvName(env) {
		return "", usagef("invalid environment name %q", env)
	}
	return env, nil
}

func (a *app) format(opts options) (export.Format, error) {
	name := a.cfg.Format
	if opts.has('f') {
		name = opts['f']
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", usagef("%s", err)
	}
	return format, nil
}

func readSource(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	if vm.IsBundle(data) {
		return "", fmt.Errorf("%s is a bundle; use envx exec", file)
	}
	return string(data), nil
}

// compile returns the bytecode of file. Diagnostics are written to stderr
// and reported as errReported.
func (a *app) compile(file string) ([]byte, error) {
	src, err := readSource(file)
	if err != nil {
		return nil, err
	}
	ctx := backend.Compile(file, src)
	if len(ctx.Errors) > 0 {
		a.report(ctx.Errors)
		return nil, errReported
	}
	return ctx.Bytecode, nil
}

// execute compiles and runs file with println going to stdout.
func (a *app) execute(file string) (*vm.VM, error) {
	src, err := readSource(file)
	if err != nil {
		return nil, err
	}
	b := backend.NewVMBackend(a.stdout)
	ctx := backend.Execute(file, src, b)
	if len(ctx.Errors) > 0 {
		a.report(ctx.Errors)
		return nil, errReported
	}
	log.Debugf("%s: %d globals", file, len(ctx.Globals))
	return b.VM, nil
}

func (a *app) report(errs []*diagnostics.DiagnosticError) {
	for _, e := range errs {
		fmt.Fprintln(a.stderr, strings.TrimRight(e.Render(a.color), "\n"))
	}
}

// reportErr renders diagnostics and passes other errors through.
func (a *app) reportErr(err error) error {
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) {
		a.report([]*diagnostics.DiagnosticError{diag})
		return errReported
	}
	return err
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.cfg.HistoryPath(), a.cfg.History.Keep)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func jsonValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
