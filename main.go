package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tkalin/phototag-go/cmd"
	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	if settings.Main.Log.Enabled {
		fileLogger, closer, err := logging.NewFileLogger(
			settings.Main.Log.Path,
			settings.Main.Name,
			slog.LevelInfo,
			logging.FileLoggerOptions{
				MaxSizeMB:  settings.Main.Log.MaxSizeMB,
				MaxBackups: settings.Main.Log.MaxBackups,
				MaxAgeDays: settings.Main.Log.MaxAgeDays,
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = closer()
		}()
		slog.SetDefault(fileLogger)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
