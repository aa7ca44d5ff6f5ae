package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"collegeoffice_go/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "collegeoffice",
	Short:         "College office administration API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging configures the logging system
func setupLogging(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// stdout in development, LOG_FILE otherwise
	if cfg.AppEnv == "development" || cfg.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		logrus.WithError(err).Warn("Could not create logs directory")
		return
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logrus.WithError(err).Warn("Could not open log file, logging to stdout")
		return
	}
	logrus.SetOutput(file)
}
