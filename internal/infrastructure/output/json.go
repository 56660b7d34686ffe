package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes one JSON document per report.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter. With indent the output is
// pretty-printed with two spaces.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return &JSONFormatter{enc: enc}
}

// Format encodes report followed by a newline.
func (f *JSONFormatter) Format(report any) error {
	return f.enc.Encode(report)
}
