package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/domain/values"
	"github.com/touchnstars/companion/internal/infrastructure/container"
)

func init() {
	rootCmd.AddCommand(newLocationCmd())
}

func newLocationCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	var sync bool

	cmd := &cobra.Command{
		Use:   "location",
		Short: "Acquire the device location",
		Long: `Request location permission if needed and take a high-accuracy fix.
With --sync the coordinates are written into the active NINA profile
as the observing site.`,
		Example: `  companion location
  companion location --sync --format json`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			if sync {
				return runLocationSync(ctx, cc.Container, cmd.OutOrStdout(), &opts)
			}
			return runLocation(ctx, cc.Container, cmd.OutOrStdout(), &opts)
		}),
	}
	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&sync, "sync", false, "write the coordinates into the active NINA profile")
	return cmd
}

func runLocation(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions) error {
	result := c.Location().GetCurrentLocation(ctx)
	if err := opts.Render(w, result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("location unavailable: %s", result.Error)
	}
	return nil
}

func runLocationSync(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions) error {
	coords, err := c.Location().SyncToProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync location to profile: %w", err)
	}
	return opts.Render(w, values.LocationResult{
		Success:   true,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Altitude:  coords.Altitude,
		Accuracy:  coords.Accuracy,
	})
}
