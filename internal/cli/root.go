// Package cli implements the predictor command line.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"disease-predictor/internal/artifact"
	"disease-predictor/internal/cfg"
	"disease-predictor/internal/common"
	"disease-predictor/internal/ml"
	"disease-predictor/internal/ports"
	"disease-predictor/internal/storage"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	logLevel    string
	artifactDir string
	backend     string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:          "predictor",
		Short:        "Disease risk predictions from pre-trained classifiers",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&flags.artifactDir, "artifacts", "", "artifact directory (overrides ARTIFACT_DIR)")
	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "artifact backend: fs or bolt (overrides ARTIFACT_BACKEND)")

	cmd.AddCommand(
		serveCmd(&flags),
		predictCmd(&flags),
		domainsCmd(&flags),
		importCmd(&flags),
	)
	return cmd
}

// settings loads configuration, applies flag overrides and configures the
// global logger.
func (f *globalFlags) settings() (cfg.Settings, error) {
	s, err := cfg.Load()
	if err != nil {
		return cfg.Settings{}, err
	}

	if f.logLevel != "" {
		s.LogLevel = f.logLevel
	}
	if f.artifactDir != "" {
		s.ArtifactDir = f.artifactDir
	}
	if f.backend != "" {
		s.ArtifactBackend = f.backend
	}
	if err := s.Validate(); err != nil {
		return cfg.Settings{}, fmt.Errorf("invalid flags: %w", err)
	}

	setupLogging(s.LogLevel, s.LogFormat)
	return s, nil
}

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == common.LogFormatConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// openStore returns the configured artifact store and its cleanup.
func openStore(s cfg.Settings) (ports.ArtifactStore, func(), error) {
	switch s.ArtifactBackend {
	case common.BackendBolt:
		store, err := storage.New(s.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close artifact database")
			}
		}, nil
	default:
		return artifact.NewFileStore(s.ArtifactDir), func() {}, nil
	}
}

func newPipeline(s cfg.Settings, store ports.ArtifactStore, m ml.MetricsInterface) *ml.Pipeline {
	registry := ml.NewRegistry(store, ml.RegistryConfig{ClassifierTimeout: s.ClassifierTimeout}, m)
	return ml.NewPipeline(registry, m)
}
