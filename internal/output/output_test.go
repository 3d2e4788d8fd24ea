package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/truffles/pkg/listing"
)

var testTime = time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

func testProperty() *listing.Property {
	return &listing.Property{
		Common: listing.Common{
			ID:        "bazaraki_1",
			URL:       "https://www.bazaraki.com/adv/1/",
			Site:      listing.SiteBazaraki,
			FetchedAt: testTime,
			Area:      listing.AreaLimassol,
			Price:     350000,
			Size:      listing.Ptr(uint32(140)),
		},
		Type:      listing.PropertyHouse,
		Condition: listing.Ptr(listing.ConditionResale),
		Bedrooms:  listing.Ptr(uint8(0)),
	}
}

func testPlot() *listing.Plot {
	return &listing.Plot{
		Common: listing.Common{
			ID:        "bazaraki_2",
			URL:       "https://www.bazaraki.com/adv/2/",
			Site:      listing.SiteBazaraki,
			FetchedAt: testTime,
			Area:      listing.AreaPaphos,
			Price:     90000,
		},
		CoveragePct: listing.Ptr(uint32(40)),
		MaxHeightM:  listing.Ptr(8.3),
	}
}

// --- Format Tests ---

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		"JSONL":  FormatJSONL,
		"ndjson": FormatJSONL,
		"yml":    FormatYAML,
		" yaml ": FormatYAML,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	_, err := ParseFormat("xml")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "json, jsonl, yaml") {
		t.Errorf("error should list the supported formats, got %v", err)
	}
}

// --- NewWriter Factory Tests ---

func TestNewWriter_Types(t *testing.T) {
	buf := &bytes.Buffer{}

	w, _ := NewWriter(buf, FormatJSON)
	if _, ok := w.(*JSONWriter); !ok {
		t.Errorf("expected *JSONWriter, got %T", w)
	}
	w, _ = NewWriter(buf, FormatJSONL)
	if _, ok := w.(*JSONLWriter); !ok {
		t.Errorf("expected *JSONLWriter, got %T", w)
	}
	w, _ = NewWriter(buf, FormatYAML)
	if _, ok := w.(*YAMLWriter); !ok {
		t.Errorf("expected *YAMLWriter, got %T", w)
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("unsupported"))
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

// --- Record Tests ---

func TestFromListing_Property(t *testing.T) {
	r := FromListing(testProperty())

	if r.Kind != listing.KindProperty || r.Type != "House" || r.Condition != "Resale" {
		t.Errorf("unexpected record %+v", r)
	}
	if r.Bedrooms == nil || *r.Bedrooms != 0 {
		t.Error("studio bedroom count should be kept")
	}
	if r.CoveragePct != nil {
		t.Error("plot fields should be empty for properties")
	}
}

func TestFromListing_Plot(t *testing.T) {
	r := FromListing(testPlot())

	if r.Kind != listing.KindPlot || r.Type != "" {
		t.Errorf("unexpected record %+v", r)
	}
	if r.CoveragePct == nil || *r.CoveragePct != 40 {
		t.Error("coverage should be copied")
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_WritesArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false)

	if err := WriteAll(w, []listing.Listing{testProperty(), testPlot()}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["kind"] != "property" || got[1]["kind"] != "plot" {
		t.Errorf("unexpected kinds: %v, %v", got[0]["kind"], got[1]["kind"])
	}
	if _, ok := got[1]["condition"]; ok {
		t.Error("absent fields should be omitted")
	}
	if got[0]["fetched_at"] != "2024-04-02T09:30:00Z" {
		t.Errorf("unexpected fetched_at %v", got[0]["fetched_at"])
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestJSONWriter_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true)

	_ = w.Write(testPlot())
	_ = w.Flush()

	if !strings.Contains(buf.String(), "\n    \"kind\"") {
		t.Errorf("expected indented output, got:\n%s", buf.String())
	}
}

func TestNewWriter_WithPrettyDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithPretty(false))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := WriteAll(w, []listing.Listing{testPlot(), testProperty()}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected a single line, got:\n%s", buf.String())
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_OneLinePerListing(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := WriteAll(w, []listing.Listing{testProperty(), testPlot(), testPlot()}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_WritesSequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := WriteAll(w, []listing.Listing{testProperty(), testPlot()}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1]["max_height_m"] != 8.3 {
		t.Errorf("unexpected max_height_m %v", got[1]["max_height_m"])
	}
	if !strings.Contains(buf.String(), "area: Limassol") {
		t.Errorf("expected area field, got:\n%s", buf.String())
	}
}
