package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/infrastructure/container"
	"github.com/touchnstars/companion/internal/infrastructure/output"
)

// mountCmd groups mount commands.
var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Control the telescope mount",
}

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.AddCommand(newMountConnectCmd())
}

func newMountConnectCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect the mount, confirming location sync first if required",
		Long: `Connect the mount through NINA. When the active profile's location sync
direction is PROMPT you are asked how site coordinates should be synchronized;
the choice is stored in the profile. Cancelling leaves the mount disconnected.`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			return runMountConnect(ctx, cc.Container, cmd.OutOrStdout(), &opts)
		}),
	}
	opts.RegisterFlags(cmd)
	return cmd
}

func runMountConnect(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions) error {
	detach := c.Prompter().Attach(ctx)
	defer detach()

	connected, err := c.MountGuard().ConnectMount(ctx)
	report := output.MountReport{Connected: connected}
	if err != nil {
		report.Error = err.Error()
	}
	if renderErr := opts.Render(w, report); renderErr != nil {
		return renderErr
	}
	return err
}
