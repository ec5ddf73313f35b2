package cli

import (
	"os"
	"strings"

	"brainquest/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:           "brainquest",
		Short:         "Timed multiple choice quiz client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				loaded.API.URL = apiURL
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			setupLogging(loaded.Log.Level)
			*cfg = loaded
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "quiz API base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(NewPlayCmd(cfg))
	cmd.AddCommand(NewTopicsCmd(cfg))
	cmd.AddCommand(NewHighscoresCmd(cfg))
	cmd.AddCommand(NewLoginCmd(cfg))
	cmd.AddCommand(NewLogoutCmd(cfg))
	cmd.AddCommand(NewAdminCmd(cfg))
	cmd.AddCommand(NewServeCmd(cfg))
	return cmd
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
