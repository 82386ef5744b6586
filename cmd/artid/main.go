// Command artid identifies artworks and monuments from photographs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/artid/internal/adapters/driving/cli"
	"github.com/custodia-labs/artid/internal/app"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	a, err := app.New(ctx, app.Options{ConfigDir: opts.ConfigDir})
	if err != nil {
		return nil, err
	}

	svc := &cli.Services{
		Settings:       a.Settings,
		Catalog:        a.Catalog,
		Collection:     a.Collection,
		RecognitionErr: a.RecognitionErr,
		Watch:          a.Watch,
		Close:          a.Close,
	}
	if a.Recognition != nil {
		svc.Recognition = a.Recognition
	}
	return svc, nil
}
