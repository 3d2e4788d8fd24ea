// Package listing defines the real-estate records produced by a crawl and the
// ordered pattern tables used to classify free text into their enumerations.
package listing

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Site identifies a source website.
type Site string

const (
	SiteBazaraki Site = "Bazaraki"
)

// ParseSite resolves a site name case-insensitively.
func ParseSite(s string) (Site, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(SiteBazaraki)) {
		return SiteBazaraki, nil
	}
	return "", fmt.Errorf("unknown site %q (options: bazaraki)", s)
}

// Kind discriminates the two listing variants.
type Kind string

const (
	KindPlot     Kind = "plot"
	KindProperty Kind = "property"
)

// Kinds returns both listing kinds in storage order.
func Kinds() []Kind {
	return []Kind{KindPlot, KindProperty}
}

// KindTable classifies breadcrumb or category text. Land is checked first:
// plot categories are usually nested under a "Property" section.
var KindTable = Table[Kind]{
	Match(`plots?|land`, KindPlot),
	Match(`propert(y|ies)`, KindProperty),
}

// ParseKind resolves a user supplied kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plot", "plots", "land":
		return KindPlot, nil
	case "property", "properties":
		return KindProperty, nil
	}
	return "", fmt.Errorf("unknown listing kind %q (options: plot|property)", s)
}

// Common holds the identity fields shared by every listing.
type Common struct {
	ID        string    `validate:"required"`
	URL       string    `validate:"required,url"`
	Site      Site      `validate:"required"`
	FetchedAt time.Time `validate:"required"`
	Area      Area      `validate:"required,oneof=Ammochostos Larnaka Lefkosia Limassol Paphos"`
	Price     uint64
	Size      *uint32
}

// Info returns a copy of the shared fields.
func (c *Common) Info() Common { return *c }

// Listing is either a *Plot or a *Property. Values are built once by the
// extractor and never mutated afterwards.
type Listing interface {
	Kind() Kind
	Info() Common
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the constraints every persisted listing must satisfy.
func Validate(l Listing) error {
	if l == nil {
		return fmt.Errorf("nil listing")
	}
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid %s %s: %w", l.Kind(), l.Info().URL, err)
	}
	return nil
}

// Ptr returns a pointer to v; handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// URLKey returns the identity of a listing URL. The fragment and a trailing
// slash are ignored and the host is lower-cased. Unparseable input is
// returned unchanged.
func URLKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
