package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
)

// JSONReporter writes the report view exactly as the HTTP API serves it.
type JSONReporter struct {
	writer io.Writer
}

func NewJSONReporter(writer io.Writer) *JSONReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONReporter{writer: writer}
}

func (c *JSONReporter) Handle(report api.Report) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
