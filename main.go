package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/warfront-relay/internal"
	"github.com/rocketscienceinc/warfront-relay/internal/config"
)

var version = "dev"

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(*cobra.Command, []string) error {
		conf := initConfig(configPath)
		logger := initLogger(conf)

		if err := app.RunApp(logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	}

	rootCmd := &cobra.Command{
		Use:          "warfront-relay",
		Short:        "Relay and matchmaking server for two-player turn-based games",
		RunE:         serve,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yml", "path to the yaml config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the WebSocket relay (default)",
		RunE:  serve,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	})

	return rootCmd
}

// initialize config. A .env file next to the binary is loaded first when present.
func initConfig(path string) *config.Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("failed to load .env: %w", err))
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
