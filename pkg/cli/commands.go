package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/funvibe/envx/internal/config"
	"github.com/funvibe/envx/internal/export"
	"github.com/funvibe/envx/internal/store"
	"github.com/funvibe/envx/internal/vm"
)

func runCommand(a *app, opts options, args []string) error {
	if len(args) > 1 {
		return usagef("expected at most one file, got %d", len(args))
	}
	format, err := a.format(opts)
	if err != nil {
		return err
	}
	t, err := a.resolveTarget(opts, args)
	if err != nil {
		return err
	}

	machine, err := a.execute(t.file)
	if err != nil {
		return err
	}
	globals := machine.Globals()
	if err := export.Write(a.stdout, format, globals); err != nil {
		return err
	}

	if opts.has('r') {
		ctx := context.Background()
		s, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		snap, err := s.Record(ctx, t.env, t.file, globals)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "recorded snapshot %s of %s\n", snap.ID, t.env)
	}
	return nil
}

func checkCommand(a *app, opts options, args []string) error {
	files := args
	if len(files) == 0 {
		t, err := a.resolveTarget(opts, nil)
		if err != nil {
			return err
		}
		files = []string{t.file}
	}

	failed := false
	for _, file := range files {
		if _, err := a.compile(file); err != nil {
			if !errors.Is(err, errReported) {
				fmt.Fprintf(a.stderr, "%s: %s\n", file, err)
			}
			failed = true
			continue
		}
		fmt.Fprintf(a.stdout, "%s: ok\n", file)
	}
	if failed {
		return errReported
	}
	return nil
}

func disasmCommand(a *app, opts options, args []string) error {
	if len(args) > 1 {
		return usagef("expected at most one file, got %d", len(args))
	}
	t, err := a.resolveTarget(opts, args)
	if err != nil {
		return err
	}
	code, err := a.compile(t.file)
	if err != nil {
		return err
	}
	out, err := vm.Disassemble(code, t.file)
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, out)
	return nil
}

func callCommand(a *app, opts options, args []string) error {
	if len(args) == 0 {
		return usagef("missing function name")
	}
	t, err := a.resolveTarget(opts, nil)
	if err != nil {
		return err
	}
	machine, err := a.execute(t.file)
	if err != nil {
		return err
	}

	name := args[0]
	if _, ok := machine.Lookup(name); !ok || config.IsPrivateName(name) {
		return fmt.Errorf("%s is not defined in %s", name, t.file)
	}
	callArgs := make([]vm.Value, len(args)-1)
	for i, s := range args[1:] {
		if callArgs[i], err = vm.FromPlain(parseArg(s)); err != nil {
			return err
		}
	}

	result, err := machine.CallValue(name, callArgs...)
	if err != nil {
		return a.reportErr(err)
	}
	if result.IsError() {
		fmt.Fprintln(a.stderr, result.String())
		return errReported
	}
	fmt.Fprintln(a.stdout, result.String())
	return nil
}

// parseArg reads a command line argument as null, a bool, a number or,
// failing those, a string.
func parseArg(s string) interface{} {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

func buildCommand(a *app, opts options, args []string) error {
	if len(args) > 1 {
		return usagef("expected at most one file, got %d", len(args))
	}
	t, err := a.resolveTarget(opts, args)
	if err != nil {
		return err
	}
	code, err := a.compile(t.file)
	if err != nil {
		return err
	}

	bundle := vm.NewBundle(t.file, t.env, code)
	data, err := bundle.Serialize()
	if err != nil {
		return err
	}
	out := opts['o']
	if out == "" {
		out = config.TrimSourceExt(t.file) + config.BundleFileExt
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	log.Debugf("bundle %s: %d bytes of code", bundle.ID, len(code))
	fmt.Fprintf(a.stdout, "%s: bundle %s\n", out, bundle.ID)
	return nil
}

func execCommand(a *app, opts options, args []string) error {
	if len(args) != 1 {
		return usagef("expected one bundle, got %d", len(args))
	}
	format, err := a.format(opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}
	bundle, err := vm.DeserializeBundle(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	machine, err := vm.RunBundle(bundle, a.stdout)
	if err != nil {
		return a.reportErr(err)
	}
	return export.Write(a.stdout, format, machine.Globals())
}

func historyCommand(a *app, opts options, args []string) error {
	if len(args) > 0 {
		return usagef("unexpected argument %q", args[0])
	}
	env, err := a.envName(opts)
	if err != nil {
		return err
	}
	limit := 10
	if opts.has('n') {
		if limit, err = strconv.Atoi(opts['n']); err != nil || limit < 0 {
			return usagef("-n must be a non-negative number, got %q", opts['n'])
		}
	}

	ctx := context.Background()
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	snaps, err := s.List(ctx, env, limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintf(a.stderr, "no snapshots of %s in %s\n", env, s.Path())
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tKEYS")
	for _, snap := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", shortID(snap.ID), snap.CreatedAt.Format(timeLayout), snap.Source, len(snap.Values))
	}
	return tw.Flush()
}

func diffCommand(a *app, opts options, args []string) error {
	if len(args) > 0 {
		return usagef("unexpected argument %q", args[0])
	}
	env, err := a.envName(opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	snaps, err := s.List(ctx, env, 2)
	if err != nil {
		return err
	}
	if len(snaps) < 2 {
		return fmt.Errorf("%s has %d snapshot(s), need two to compare", env, len(snaps))
	}

	newer, older := snaps[0], snaps[1]
	fmt.Fprintf(a.stdout, "%s %s -> %s %s\n",
		shortID(older.ID), older.CreatedAt.Format(timeLayout),
		shortID(newer.ID), newer.CreatedAt.Format(timeLayout))
	changes := store.Diff(older.Values, newer.Values)
	if len(changes) == 0 {
		fmt.Fprintln(a.stdout, "no changes")
		return nil
	}
	for _, c := range changes {
		switch c.Kind {
		case store.Added:
			fmt.Fprintf(a.stdout, "+ %s = %s\n", c.Key, jsonValue(c.New))
		case store.Removed:
			fmt.Fprintf(a.stdout, "- %s = %s\n", c.Key, jsonValue(c.Old))
		default:
			fmt.Fprintf(a.stdout, "~ %s: %s -> %s\n", c.Key, jsonValue(c.Old), jsonValue(c.New))
		}
	}
	return nil
}
