// Package extract turns fetched listing documents into typed listings.
//
// Field functions never fail on absence: an optional field that cannot be
// found is simply left nil. Only a document missing one of its containers or
// a required field (id, price, area, property type) yields an error, always
// wrapping ErrStructure.
package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// Parser builds a listing from a fetched detail document.
type Parser func(doc *goquery.Document, url string, fetchedAt time.Time) (listing.Listing, error)

// Bazaraki selectors.
const (
	bazarakiID          = `span[itemprop="sku"]`
	bazarakiPrice       = `meta[itemprop="price"]`
	bazarakiAddress     = `span[itemprop="address"]`
	bazarakiChars       = `div.announcement-characteristics`
	bazarakiDescription = `div.announcement-description`
	bazarakiBreadcrumbs = `.breadcrumbs`
)

// ParseBazaraki extracts a plot or property from a bazaraki.com advert.
func ParseBazaraki(doc *goquery.Document, url string, fetchedAt time.Time) (listing.Listing, error) {
	sku := strings.TrimSpace(doc.Find(bazarakiID).First().Text())
	if sku == "" {
		return nil, missing(url, "id")
	}

	price, err := bazarakiPriceOf(doc, url)
	if err != nil {
		return nil, err
	}

	address := doc.Find(bazarakiAddress).First()
	if address.Length() == 0 {
		return nil, missing(url, "area")
	}
	area, ok := listing.LookupArea(address.Text())
	if !ok {
		return nil, &ParseError{URL: url, Field: "area", Err: fmt.Errorf("%w: %q", ErrUnclassified, strings.TrimSpace(address.Text()))}
	}

	chars := doc.Find(bazarakiChars).First()
	if chars.Length() == 0 {
		return nil, missing(url, "characteristics")
	}
	desc := doc.Find(bazarakiDescription).First()
	if desc.Length() == 0 {
		return nil, missing(url, "description")
	}

	charsText := chars.Text()
	descText := desc.Text()

	common := listing.Common{
		ID:        "bazaraki_" + sku,
		URL:       url,
		Site:      listing.SiteBazaraki,
		FetchedAt: fetchedAt.UTC(),
		Area:      area,
		Price:     price,
		Size:      Size(charsText),
	}

	kind, ok := classifyKind(doc.Find(bazarakiBreadcrumbs).Text(), charsText)
	if !ok {
		return nil, &ParseError{URL: url, Field: "kind", Err: ErrUnclassified}
	}

	var l listing.Listing
	switch kind {
	case listing.KindPlot:
		l = parsePlot(common, charsText, descText)
	default:
		p, err := parseProperty(common, chars, descText)
		if err != nil {
			return nil, err
		}
		l = p
	}

	if err := listing.Validate(l); err != nil {
		return nil, &ParseError{URL: url, Field: "listing", Err: fmt.Errorf("%w: %v", ErrStructure, err)}
	}
	return l, nil
}

func bazarakiPriceOf(doc *goquery.Document, url string) (uint64, error) {
	content, ok := doc.Find(bazarakiPrice).First().Attr("content")
	if !ok {
		return 0, missing(url, "price")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxUint64 {
		return 0, &ParseError{URL: url, Field: "price", Err: fmt.Errorf("%w: bad price %q", ErrStructure, content)}
	}
	return uint64(f), nil
}

// classifyKind tries the breadcrumb trail first. Characteristics of built
// properties often mention a plot area, so a property type match there is
// preferred over the plot/property table.
func classifyKind(breadcrumbs, chars string) (listing.Kind, bool) {
	if k, ok := listing.KindTable.Lookup(breadcrumbs); ok {
		return k, true
	}
	if _, ok := listing.PropertyTypeTable.Lookup(chars); ok {
		return listing.KindProperty, true
	}
	return listing.KindTable.Lookup(chars)
}

func parsePlot(common listing.Common, chars, desc string) *listing.Plot {
	text := chars + "\n" + desc
	p := &listing.Plot{
		Common:      common,
		CoveragePct: Coverage(text),
		DensityPct:  Density(text),
		MaxHeightM:  MaxHeight(text),
		MaxStoreys:  MaxStoreys(text),
	}
	if t, ok := listing.PlotTypeTable.Lookup(chars); ok {
		p.Type = &t
	} else if t, ok := listing.PlotTypeTable.Lookup(desc); ok {
		p.Type = &t
	}
	return p
}

func parseProperty(common listing.Common, chars *goquery.Selection, desc string) (*listing.Property, error) {
	text := chars.Text()
	typ, ok := listing.PropertyTypeTable.Lookup(text)
	if !ok {
		return nil, &ParseError{URL: common.URL, Field: "property type", Err: ErrUnclassified}
	}
	p := &listing.Property{
		Common:           common,
		Type:             typ,
		ConstructionYear: ConstructionYear(desc),
		Bedrooms:         Bedrooms(chars),
		Bathrooms:        Bathrooms(chars),
		PostalCode:       PostalCode(chars),
	}
	if c, ok := listing.ConditionTable.Lookup(text); ok {
		p.Condition = &c
	}
	return p, nil
}
