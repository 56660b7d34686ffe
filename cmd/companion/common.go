package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/touchnstars/companion/internal/infrastructure/output"
)

// CommonOptions contains flags shared across commands.
type CommonOptions struct {
	Format  string
	Timeout time.Duration
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 2 * time.Minute,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for the whole command (0 to disable)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	for _, f := range output.NewFormatterFactory().SupportedFormats() {
		if f == opts.Format {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (valid: table, json, yaml)", opts.Format)
}

// Render writes report to w in the selected format.
func (opts *CommonOptions) Render(w io.Writer, report any) error {
	formatter, err := output.NewFormatterFactory().Create(opts.Format, w, output.FormatterOptions{
		Indent: true,
		Color:  !opts.NoColor && isTerminal(w),
	})
	if err != nil {
		return err
	}
	return formatter.Format(report)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
