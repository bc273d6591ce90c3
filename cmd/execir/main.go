package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/execir/execir/ir"
	"github.com/execir/execir/passes"
)

func main() {
	runCmd := &cli.Command{
		Name:        "run",
		Description: "run <pass,...> <file>...: apply passes to every function and print the result",
		Action:      runAct,
		Args:        cli.Args{},
	}

	passesCmd := &cli.Command{
		Name:        "passes",
		Description: "list registered passes",
		Action:      passesAct,
	}

	app := &cli.Command{
		Name:        "execir",
		Description: "execir is a tool for rewriting executor graph ir",
		Commands: []*cli.Command{
			runCmd,
			passesCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) < 2 {
		return errors.New("usage: run <pass,...> <file>...")
	}

	var ps []passes.Pass

	for _, name := range strings.Split(c.Args[0], ",") {
		p, ok := passes.Lookup(name)
		if !ok {
			return errors.New("unknown pass %v", name)
		}

		ps = append(ps, p)
	}

	opt := passes.Options{
		DumpDir: os.Getenv("EXECIR_DUMP_DIR"),
	}

	if v := os.Getenv("EXECIR_VERBOSITY"); v != "" {
		opt.Verbosity, err = strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse EXECIR_VERBOSITY")
		}
	}

	for _, a := range c.Args[1:] {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		fs, err := ir.ParseModule(ctx, text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		for _, f := range fs {
			for _, p := range ps {
				p.Run(ctx, f, opt)
			}

			fmt.Printf("%s", f.String())
		}
	}

	return nil
}

func passesAct(c *cli.Command) error {
	for _, p := range passes.All() {
		fmt.Printf("%-36s %s\n", p.Name, p.Description)
	}

	return nil
}
