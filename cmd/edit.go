package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofund/editor"
	"github.com/google/subcommands"
)

type editCmd struct {
	local bool
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit coins interactively and calculate allocations" }
func (*editCmd) Usage() string {
	return `cfund edit [-local] [<command>...]

  Opens an interactive editor on a list of coins. Arguments are executed as
  commands before the prompt is shown. See 'cfund topic edit'.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.local, "local", false, "Compute allocations in process instead of calling the allocation service")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	e := editor.New(os.Stdout, os.Stdin, a.session(c.local), a.cfg.Defaults.Currency)
	e.Print = writeMarkdown
	if err := e.Run(ctx, f.Args()...); err != nil {
		fmt.Fprintln(os.Stderr, "Editor failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
