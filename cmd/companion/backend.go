package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/infrastructure/container"
	"github.com/touchnstars/companion/internal/infrastructure/output"
)

func init() {
	rootCmd.AddCommand(newBackendCmd())
}

func newBackendCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	var constraint string

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Check that the NINA Advanced API is reachable and compatible",
		Example: `  companion backend
  companion backend --api-url http://astro-pi.local:1888/v2/api --min-version ">= 2.1.0"`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			if constraint == "" {
				constraint = cc.Container.SystemConfig().API.MinVersion
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()
			return runBackend(ctx, cc.Container, cmd.OutOrStdout(), &opts, constraint)
		}),
	}
	opts.RegisterFlags(cmd)
	cmd.Flags().StringVar(&constraint, "min-version", "", "semver constraint the API version must satisfy (default from config)")
	return cmd
}

func runBackend(ctx context.Context, c *container.Container, w io.Writer, opts *CommonOptions, constraint string) error {
	api := c.API()
	report := output.BackendReport{URL: api.BaseURL(), Constraint: constraint}

	raw, err := api.Version(ctx)
	if err != nil {
		report.Error = err.Error()
		if renderErr := opts.Render(w, report); renderErr != nil {
			return renderErr
		}
		return err
	}
	report.Reachable = true
	report.Version = raw

	got, err := api.CheckCompatibility(ctx, constraint)
	if got != nil {
		report.Version = got.String()
	}
	if err != nil {
		report.Error = err.Error()
	} else {
		report.Compatible = true
	}

	if renderErr := opts.Render(w, report); renderErr != nil {
		return renderErr
	}
	return err
}
