package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ssio/cmd/ssio/commands"
	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default()}
	parser := kong.Parse(cli,
		kong.Name("ssio"),
		kong.Description("Compile HTML and markdown pages with includes and a shared template into a static site."),
		kong.UsageOnError(),
		kong.Bind(global),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global.Context = ctx
	err := parser.Run(global, cli)
	stop()
	if err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
