package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/artid/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/artid/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP recognition API",
	Long: `Start the HTTP API.

Routes:
  POST /v1/recognize            multipart "image" upload or JSON {"image_base64": ...}
  GET  /v1/catalog              curated catalog entries
  GET  /v1/collections/{user}   saved recognitions
  GET  /healthz                 health check

The configuration file is watched; threshold and prompt changes apply
without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr, else :8080)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origins (default all)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireRecognition()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	origins, _ := cmd.Flags().GetStringSlice("cors-origin")
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.ServerAddr
		}
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Addr:         addr,
		AllowOrigins: origins,
	}, httpapi.Services{
		Recognition: svc,
		Catalog:     catalogService,
		Collection:  collectionService,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return server.Run(ctx)
	})
	if watchConfig != nil {
		g.Go(func() error {
			if err := watchConfig(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watch stopped: %v", err)
			}
			return nil
		})
	}

	return g.Wait()
}
