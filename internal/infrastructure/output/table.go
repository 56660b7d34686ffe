package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/touchnstars/companion/internal/application/services"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

const ruleWidth = 48

// TableFormatter formats reports as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the report as a table.
func (f *TableFormatter) Format(report any) error {
	switch r := report.(type) {
	case services.StatusSet:
		f.formatStatusSet(r)
	case *services.StatusSet:
		f.formatStatusSet(*r)
	case CapabilityReport:
		f.formatCapability(r)
	case values.LocationResult:
		f.formatLocation(r)
	case MountReport:
		f.formatMount(r)
	case BackendReport:
		f.formatBackend(r)
	default:
		return fmt.Errorf("table format does not support %T", report)
	}
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatStatusSet(set services.StatusSet) {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", ruleWidth), colorGray))
	fmt.Fprintf(f.writer, "%-16s %s\n", f.colorize("Capability", colorBold), f.colorize("Status", colorBold))
	for _, kind := range capabilities.AllKinds() {
		fmt.Fprintf(f.writer, "%-16s %s\n", kind, f.status(set.Get(kind)))
	}
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", ruleWidth), colorGray))
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatCapability(r CapabilityReport) {
	fmt.Fprintf(f.writer, "%s: %s\n", f.colorize(string(r.Capability), colorBold), f.status(r.Status))
	if r.Message != "" {
		fmt.Fprintf(f.writer, "  %s\n", r.Message)
	}
	if r.Error != "" {
		fmt.Fprintf(f.writer, "  %s: %s\n", f.colorize("Error", colorRed), r.Error)
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatLocation(r values.LocationResult) {
	if !r.Success {
		fmt.Fprintf(f.writer, "%s %s\n", f.colorize("✗ Location unavailable:", colorRed), r.Error)
		return
	}
	fmt.Fprintln(f.writer, f.colorize("✓ Location acquired", colorGreen))
	fmt.Fprintf(f.writer, "  Latitude:  %s\n", formatFloat(r.Latitude))
	fmt.Fprintf(f.writer, "  Longitude: %s\n", formatFloat(r.Longitude))
	if r.Altitude != nil {
		fmt.Fprintf(f.writer, "  Altitude:  %s m\n", formatFloat(*r.Altitude))
	}
	if r.Accuracy > 0 {
		fmt.Fprintf(f.writer, "  Accuracy:  %s m\n", formatFloat(r.Accuracy))
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatMount(r MountReport) {
	switch {
	case r.Connected:
		fmt.Fprintln(f.writer, f.colorize("✓ Mount connected", colorGreen))
	case r.Error == "":
		fmt.Fprintln(f.writer, f.colorize("⊘ Connection cancelled", colorYellow))
	default:
		fmt.Fprintf(f.writer, "%s %s\n", f.colorize("✗ Mount not connected:", colorRed), r.Error)
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatBackend(r BackendReport) {
	fmt.Fprintf(f.writer, "Backend: %s\n", r.URL)
	if !r.Reachable {
		fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("✗ Unreachable:", colorRed), r.Error)
		return
	}
	fmt.Fprintf(f.writer, "  Version: %s (required %s)\n", r.Version, r.Constraint)
	if r.Compatible {
		fmt.Fprintf(f.writer, "  %s\n", f.colorize("✓ Compatible", colorGreen))
		return
	}
	fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("✗ Incompatible:", colorRed), r.Error)
}

func (f *TableFormatter) status(s capabilities.Status) string {
	switch s {
	case capabilities.StatusGranted:
		return f.colorize("✓ "+s.String(), colorGreen)
	case capabilities.StatusLimited:
		return f.colorize("◐ "+s.String(), colorYellow)
	case capabilities.StatusDenied:
		return f.colorize("✗ "+s.String(), colorRed)
	default:
		return f.colorize("? "+s.String(), colorGray)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
