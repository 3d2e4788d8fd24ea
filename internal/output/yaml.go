package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// YAMLWriter writes YAML output.
type YAMLWriter struct {
	w     *bufio.Writer
	items []Record
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]Record, 0),
	}
}

// Write buffers a single listing.
func (w *YAMLWriter) Write(l listing.Listing) error {
	w.items = append(w.items, FromListing(l))
	return nil
}

// Flush writes the buffered listings as a YAML sequence.
func (w *YAMLWriter) Flush() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.items = w.items[:0]
	return w.w.Flush()
}
