package output

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// YAMLFormatter writes reports as YAML documents.
type YAMLFormatter struct {
	w io.Writer
}

// NewYAMLFormatter creates a YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{w: w}
}

// Format encodes report with two-space indentation and block sequences
// indented under their key.
func (f *YAMLFormatter) Format(report any) error {
	enc := yaml.NewEncoder(f.w, yaml.Indent(2), yaml.IndentSequence(true))
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode %T as yaml: %w", report, err)
	}
	return enc.Close()
}
