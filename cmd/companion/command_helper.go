package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/touchnstars/companion/internal/infrastructure/container"
)

// CommandContext carries what every command handler needs.
type CommandContext struct {
	Context   context.Context
	Container *container.Container
	Logger    *slog.Logger
}

// CommandHandler runs a command against a built container.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer builds the container from the merged viper settings and runs
// handler with a context that is cancelled on SIGINT or SIGTERM. Cancelling
// abandons any pending confirmation.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		c, err := container.New(containerOptions(logger))
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return handler(&CommandContext{Context: ctx, Container: c, Logger: logger}, cmd, args)
	}
}

// containerOptions maps viper keys onto container overrides. Flags, the
// COMPANION_* environment and the config file are already merged by viper.
func containerOptions(logger *slog.Logger) container.Options {
	return container.Options{
		Logger:           logger,
		SystemConfigPath: viper.ConfigFileUsed(),
		Platform:         viper.GetString("platform"),
		APIBaseURL:       viper.GetString("api.base_url"),
		DeviceFile:       viper.GetString("device_file"),
		NonInteractive:   viper.GetBool("non_interactive"),
	}
}
