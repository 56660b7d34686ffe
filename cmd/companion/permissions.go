package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/infrastructure/container"
	"github.com/touchnstars/companion/internal/infrastructure/output"
)

// permissionsCmd groups the capability permission commands.
var permissionsCmd = &cobra.Command{
	Use:     "permissions",
	Aliases: []string{"perm"},
	Short:   "Check and request device capability permissions",
	Long: `Check and request the device capabilities companion depends on:
camera, location and notifications. Camera access is arbitrated by NINA
and is always reported as granted.`,
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
	permissionsCmd.AddCommand(
		newPermissionsStatusCmd(),
		newPermissionsCheckCmd(),
		newPermissionsRequestCmd(),
		newPermissionsSettingsCmd(),
	)
}

func newPermissionsStatusCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Check all capabilities concurrently",
		Example: `  companion permissions status --format json`,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			return runPermissionsStatus(ctx, cc.Container, cmd.OutOrStdout(), &opts)
		}),
	}
	opts.RegisterFlags(cmd)
	return cmd
}

func newPermissionsCheckCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	cmd := &cobra.Command{
		Use:       "check <capability>",
		Short:     "Check one capability without prompting",
		Example:   `  companion permissions check location`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			kind, err := capabilities.ParseKind(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			return runPermissionsCheck(ctx, cc.Container, cmd.OutOrStdout(), &opts, kind)
		}),
	}
	opts.RegisterFlags(cmd)
	return cmd
}

func newPermissionsRequestCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	cmd := &cobra.Command{
		Use:   "request <capability>",
		Short: "Request one capability, showing the OS dialog if needed",
		Long: `Request a capability. A capability that is already granted is not
requested again. On web every capability is granted without asking.`,
		Example:   `  companion permissions request notifications`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			kind, err := capabilities.ParseKind(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			return runPermissionsRequest(ctx, cc.Container, cmd.OutOrStdout(), &opts, kind)
		}),
	}
	opts.RegisterFlags(cmd)
	return cmd
}

func newPermissionsSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Open the OS settings page for the app",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			cc.Container.Permissions().OpenAppSettings(cc.Context)
			if !cc.Container.Permissions().IsNative() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "App settings are only available on native platforms.")
				return err
			}
			return nil
		}),
	}
}

func runPermissionsStatus(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions) error {
	return opts.Render(w, c.Permissions().CheckAll(ctx))
}

func runPermissionsCheck(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions, kind capabilities.Kind) error {
	pm := c.Permissions()
	status := pm.Check(ctx, kind)
	return opts.Render(w, output.CapabilityReport{
		Capability: kind,
		Status:     status,
		Granted:    status.IsGranted(),
		Message:    pm.StatusMessage(kind, nil),
	})
}

func runPermissionsRequest(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions, kind capabilities.Kind) error {
	pm := c.Permissions()
	result := pm.Request(ctx, kind)
	report := output.CapabilityReport{
		Capability: kind,
		Status:     result.Status,
		Granted:    result.Granted,
		Message:    pm.StatusMessage(kind, nil),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	return opts.Render(w, report)
}

func kindNames() []string {
	kinds := capabilities.AllKinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
