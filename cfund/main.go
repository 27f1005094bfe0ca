// Command cfund allocates capital across crypto assets, weighted by market cap.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cryptofund/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Shell completion, when invoked by the shell.
	cmd.Completion().Complete("cfund")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
