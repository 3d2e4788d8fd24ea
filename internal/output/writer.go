// Package output writes listings as JSON, JSON lines or YAML.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatJSONL, FormatYAML}
}

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported output format: %s (options: %s)", s, formatList())
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single listing.
	Write(l listing.Listing) error

	// Flush ensures all data is written.
	Flush() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
}

// WithPretty toggles indentation of JSON arrays. It is on by default.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{pretty: true}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteAll writes every listing and flushes.
func WriteAll(w Writer, listings []listing.Listing) error {
	for _, l := range listings {
		if err := w.Write(l); err != nil {
			return err
		}
	}
	return w.Flush()
}
