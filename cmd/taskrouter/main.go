package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskrouter/internal/config"
	"taskrouter/internal/learning"
	"taskrouter/internal/logging"
	"taskrouter/internal/registry"
	"taskrouter/internal/triage"
)

var (
	// Global flags
	configPath   string
	registryPath string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "taskrouter",
	Short: "taskrouter - query classification and adaptive routing",
	Long: `taskrouter classifies natural-language queries against a registry of
handler profiles and routes each one to a single handler, a coordinated
multi-domain plan, or a strategic escalation.

Routing decisions improve over time: reported outcomes adjust learned
pattern weights, which feed back into confidence calibration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadOrDefault(configPath)
		if verbose {
			cfg.Logging.DebugMode = true
			if cfg.Logging.Level == "" || cfg.Logging.Level == "info" {
				cfg.Logging.Level = "debug"
			}
		}
		if registryPath != "" {
			cfg.Registry.Path = registryPath
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// appConfig is resolved once in PersistentPreRunE and shared by subcommands.
var appConfig *config.Config

// router bundles the classifier with the resources it owns.
type router struct {
	classifier *triage.Classifier
	engine     *learning.Engine
	watcher    *registry.Watcher
	cancel     context.CancelFunc
}

// newRouter builds the full routing pipeline from the resolved config.
func newRouter(cfg *config.Config) (*router, error) {
	r := &router{}

	var source triage.RegistrySource
	if cfg.Registry.Watch {
		w, err := registry.NewWatcher(cfg.Registry.Path)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		if err := w.Start(ctx); err != nil {
			cancel()
			return nil, err
		}
		r.watcher = w
		r.cancel = cancel
		source = w
	} else {
		reg, err := registry.LoadFile(cfg.Registry.Path)
		if err != nil {
			return nil, err
		}
		source = triage.StaticSource{Registry: reg}
	}

	engine, err := learning.NewEngine(cfg.Learning)
	if err != nil {
		r.close()
		return nil, err
	}
	r.engine = engine

	c, err := triage.NewClassifier(cfg, source, engine)
	if err != nil {
		r.close()
		return nil, err
	}
	r.classifier = c
	return r, nil
}

func (r *router) close() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.watcher != nil {
		r.watcher.Stop()
	}
	if r.engine != nil {
		if err := r.engine.Close(); err != nil {
			logging.Error(logging.CategoryCLI, "closing learning store: %v", err)
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: taskrouter.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "handler definitions file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(handlersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
