package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/cryptofund/allocator"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the allocation service" }
func (*serveCmd) Usage() string {
	return `cfund serve [-listen <addr>]

  Runs the allocation service until interrupted. See 'cfund topic serve'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "Address to listen on (defaults to the configuration)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	addr := c.listen
	if addr == "" {
		addr = a.cfg.Allocator.Listen
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("allocation service starting", zap.String("addr", addr))
	if err := allocator.ListenAndServe(ctx, addr, a.log); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
