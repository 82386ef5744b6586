// Package cli implements the artid command line using cobra.
//
// Commands reach the core only through driving ports. The services are
// assembled by a Bootstrap function supplied by main, so tests can set the
// package-level services directly.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
)

// skipBootstrap marks commands that need no services.
const skipBootstrap = "skip-bootstrap"

var version = "dev"

// Global flags.
var (
	verbose   bool
	logFormat string
	configDir string
)

// Services used by commands. Nil means the service is unavailable.
var (
	settingsService    driving.SettingsService
	recognitionService driving.RecognitionService
	catalogService     driving.CatalogService
	collectionService  driving.CollectionService

	// recognitionErr explains why recognitionService is nil.
	recognitionErr error

	// watchConfig blocks, reloading configuration on change.
	watchConfig func(ctx context.Context) error

	closeServices func() error
)

// Options are passed to the Bootstrap function.
type Options struct {
	ConfigDir string
}

// Services is what a Bootstrap returns. Optional fields may be left nil.
type Services struct {
	Settings       driving.SettingsService
	Recognition    driving.RecognitionService
	RecognitionErr error
	Catalog        driving.CatalogService
	Collection     driving.CollectionService
	Watch          func(ctx context.Context) error
	Close          func() error
}

// Bootstrap assembles the services for one invocation.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var bootstrap Bootstrap

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by 'artid version'.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "artid",
	Short: "Identify artworks and monuments from photographs",
	Long: `artid identifies the artwork or monument in a photograph.

A vision model answers first. When it is not confident enough, artid runs a
reverse-image search, reads the pages it finds and asks a text model, then
falls back to the vision model with the web hints. Results are reconciled
against a curated catalog and can be saved to a personal collection.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&logFormat, "log-format", string(logger.FormatText), "log format (text or json)")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.artid)")
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetFormat(logger.Format(logFormat))

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	settingsService = svc.Settings
	recognitionService = svc.Recognition
	recognitionErr = svc.RecognitionErr
	catalogService = svc.Catalog
	collectionService = svc.Collection
	watchConfig = svc.Watch
	closeServices = svc.Close
	return nil
}

// requireRecognition returns the recognition service or explains its absence.
func requireRecognition() (driving.RecognitionService, error) {
	if recognitionService != nil {
		return recognitionService, nil
	}
	if recognitionErr != nil {
		return nil, recognitionErr
	}
	return nil, fmt.Errorf("recognition service not configured. Run 'artid settings llm' to fix")
}
