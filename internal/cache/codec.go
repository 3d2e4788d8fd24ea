package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jmylchreest/truffles/pkg/listing"
)

var (
	plotHeader = []string{
		"id", "url", "site", "fetched_at", "area", "price", "size",
		"kind", "coverage_ratio_pct", "density_ratio_pct", "max_height_m", "max_storeys",
	}
	propertyHeader = []string{
		"id", "url", "site", "fetched_at", "area", "price", "size",
		"kind", "condition", "construction_year", "bedroom_count", "bathroom_count", "postal_code",
	}
)

// Header returns the CSV header row for a listing kind.
func Header(kind listing.Kind) []string {
	if kind == listing.KindPlot {
		return plotHeader
	}
	return propertyHeader
}

// FileName returns the CSV file holding listings of kind.
func FileName(kind listing.Kind) string {
	if kind == listing.KindPlot {
		return "plots.csv"
	}
	return "properties.csv"
}

// Encode renders a listing as a CSV row. Absent optional fields are empty.
func Encode(l listing.Listing) ([]string, error) {
	switch v := l.(type) {
	case *listing.Plot:
		return append(encodeCommon(v.Common),
			optString(v.Type),
			optUint(v.CoveragePct),
			optUint(v.DensityPct),
			optFloat(v.MaxHeightM),
			optUint(v.MaxStoreys),
		), nil
	case *listing.Property:
		return append(encodeCommon(v.Common),
			string(v.Type),
			optString(v.Condition),
			optUint(v.ConstructionYear),
			optUint(v.Bedrooms),
			optUint(v.Bathrooms),
			optUint(v.PostalCode),
		), nil
	}
	return nil, fmt.Errorf("unsupported listing %T", l)
}

// Decode parses a CSV row written by Encode.
func Decode(kind listing.Kind, row []string) (listing.Listing, error) {
	if want := len(Header(kind)); len(row) != want {
		return nil, fmt.Errorf("%s row has %d fields, want %d", kind, len(row), want)
	}

	common, err := decodeCommon(row)
	if err != nil {
		return nil, err
	}

	d := decoder{row: row}
	switch kind {
	case listing.KindPlot:
		p := &listing.Plot{Common: common}
		p.Type = optEnum[listing.PlotType](row[7])
		p.CoveragePct = parseOpt[uint32](&d, 8)
		p.DensityPct = parseOpt[uint32](&d, 9)
		p.MaxHeightM = d.float(10)
		p.MaxStoreys = parseOpt[uint32](&d, 11)
		if d.err != nil {
			return nil, d.err
		}
		return p, nil
	default:
		p := &listing.Property{Common: common, Type: listing.PropertyType(row[7])}
		p.Condition = optEnum[listing.Condition](row[8])
		p.ConstructionYear = parseOpt[uint32](&d, 9)
		p.Bedrooms = parseOpt[uint8](&d, 10)
		p.Bathrooms = parseOpt[uint8](&d, 11)
		p.PostalCode = parseOpt[uint32](&d, 12)
		if d.err != nil {
			return nil, d.err
		}
		return p, nil
	}
}

func encodeCommon(c listing.Common) []string {
	return []string{
		c.ID,
		c.URL,
		string(c.Site),
		c.FetchedAt.UTC().Format(time.RFC3339Nano),
		string(c.Area),
		strconv.FormatUint(c.Price, 10),
		optUint(c.Size),
	}
}

func decodeCommon(row []string) (listing.Common, error) {
	fetchedAt, err := time.Parse(time.RFC3339Nano, row[3])
	if err != nil {
		return listing.Common{}, fmt.Errorf("fetched_at: %w", err)
	}
	price, err := strconv.ParseUint(row[5], 10, 64)
	if err != nil {
		return listing.Common{}, fmt.Errorf("price: %w", err)
	}

	d := decoder{row: row}
	c := listing.Common{
		ID:        row[0],
		URL:       row[1],
		Site:      listing.Site(row[2]),
		FetchedAt: fetchedAt.UTC(),
		Area:      listing.Area(row[4]),
		Price:     price,
		Size:      parseOpt[uint32](&d, 6),
	}
	return c, d.err
}

// decoder keeps the first parse failure so optional columns read cleanly.
type decoder struct {
	row []string
	err error
}

func (d *decoder) float(i int) *float64 {
	if d.row[i] == "" {
		return nil
	}
	f, err := strconv.ParseFloat(d.row[i], 64)
	if err != nil {
		d.fail(i, err)
		return nil
	}
	return &f
}

func (d *decoder) fail(i int, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("column %d: %w", i, err)
	}
}

type unsigned interface {
	~uint8 | ~uint32 | ~uint64
}

func parseOpt[T unsigned](d *decoder, i int) *T {
	s := d.row[i]
	if s == "" {
		return nil
	}
	var zero T
	bits := 64
	switch any(zero).(type) {
	case uint8:
		bits = 8
	case uint32:
		bits = 32
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		d.fail(i, err)
		return nil
	}
	v := T(n)
	return &v
}

func optEnum[T ~string](s string) *T {
	if s == "" {
		return nil
	}
	v := T(s)
	return &v
}

func optString[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func optUint[T unsigned](v *T) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
