package output

import (
	"time"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// Record is the flat, serialisable view of a listing shared by every
// output format. Fields that do not apply to a kind are omitted.
type Record struct {
	Kind      listing.Kind `json:"kind" yaml:"kind"`
	ID        string       `json:"id" yaml:"id"`
	URL       string       `json:"url" yaml:"url"`
	Site      listing.Site `json:"site" yaml:"site"`
	FetchedAt time.Time    `json:"fetched_at" yaml:"fetched_at"`
	Area      listing.Area `json:"area" yaml:"area"`
	Price     uint64       `json:"price" yaml:"price"`
	Size      *uint32      `json:"size,omitempty" yaml:"size,omitempty"`
	Type      string       `json:"type,omitempty" yaml:"type,omitempty"`

	// Property
	Condition        string  `json:"condition,omitempty" yaml:"condition,omitempty"`
	ConstructionYear *uint32 `json:"construction_year,omitempty" yaml:"construction_year,omitempty"`
	Bedrooms         *uint8  `json:"bedroom_count,omitempty" yaml:"bedroom_count,omitempty"`
	Bathrooms        *uint8  `json:"bathroom_count,omitempty" yaml:"bathroom_count,omitempty"`
	PostalCode       *uint32 `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`

	// Plot
	CoveragePct *uint32  `json:"coverage_ratio_pct,omitempty" yaml:"coverage_ratio_pct,omitempty"`
	DensityPct  *uint32  `json:"density_ratio_pct,omitempty" yaml:"density_ratio_pct,omitempty"`
	MaxHeightM  *float64 `json:"max_height_m,omitempty" yaml:"max_height_m,omitempty"`
	MaxStoreys  *uint32  `json:"max_storeys,omitempty" yaml:"max_storeys,omitempty"`
}

// FromListing flattens l.
func FromListing(l listing.Listing) Record {
	c := l.Info()
	r := Record{
		Kind:      l.Kind(),
		ID:        c.ID,
		URL:       c.URL,
		Site:      c.Site,
		FetchedAt: c.FetchedAt,
		Area:      c.Area,
		Price:     c.Price,
		Size:      c.Size,
	}

	switch v := l.(type) {
	case *listing.Property:
		r.Type = string(v.Type)
		if v.Condition != nil {
			r.Condition = string(*v.Condition)
		}
		r.ConstructionYear = v.ConstructionYear
		r.Bedrooms = v.Bedrooms
		r.Bathrooms = v.Bathrooms
		r.PostalCode = v.PostalCode
	case *listing.Plot:
		if v.Type != nil {
			r.Type = string(*v.Type)
		}
		r.CoveragePct = v.CoveragePct
		r.DensityPct = v.DensityPct
		r.MaxHeightM = v.MaxHeightM
		r.MaxStoreys = v.MaxStoreys
	}
	return r
}
