package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// JSONWriter buffers listings and writes them as one JSON array.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	items  []Record
}

// NewJSONWriter creates a JSON writer. Pretty output is indented by two
// spaces.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		items:  make([]Record, 0),
	}
}

// Write buffers a single listing.
func (w *JSONWriter) Write(l listing.Listing) error {
	w.items = append(w.items, FromListing(l))
	return nil
}

// Flush writes the buffered listings as a JSON array. An empty buffer
// produces "[]".
func (w *JSONWriter) Flush() error {
	var output []byte
	var err error

	if w.pretty {
		output, err = json.MarshalIndent(w.items, "", "  ")
	} else {
		output, err = json.Marshal(w.items)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}

	w.items = w.items[:0]
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	return &JSONLWriter{
		w:   bw,
		enc: json.NewEncoder(bw),
	}
}

// Write writes a single listing as a JSON line.
func (w *JSONLWriter) Write(l listing.Listing) error {
	return w.enc.Encode(FromListing(l))
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}
