// Package seeds holds the search pages a crawl starts from.
package seeds

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// ErrInvalidSeed indicates a malformed seed entry. It is a configuration
// error and aborts the crawl before any request is made.
var ErrInvalidSeed = errors.New("invalid seed")

// Entry is one search root: the newest-first listing index of a site for a
// single area and listing kind.
type Entry struct {
	URL  string
	Site listing.Site
	Area *listing.Area
	Kind *listing.Kind
}

// Filter narrows a seed table. Nil fields match every entry; a set field
// only matches entries carrying the same value.
type Filter struct {
	Site *listing.Site
	Area *listing.Area
	Kind *listing.Kind
}

const bazarakiRealEstate = "https://www.bazaraki.com/real-estate/"

var bazarakiDistricts = []struct {
	slug string
	area listing.Area
}{
	{"ammochostos-district", listing.AreaAmmochostos},
	{"larnaka-district-larnaca", listing.AreaLarnaka},
	{"lefkosia-district-nicosia", listing.AreaLefkosia},
	{"lemesos-district-limassol", listing.AreaLimassol},
	{"pafos-district-paphos", listing.AreaPaphos},
}

var defaults = buildDefaults()

func buildDefaults() []Entry {
	categories := []struct {
		path string
		kind listing.Kind
	}{
		{"houses-and-villas-sale", listing.KindProperty},
		{"land-and-plot", listing.KindPlot},
	}

	var entries []Entry
	for _, c := range categories {
		for _, d := range bazarakiDistricts {
			entries = append(entries, Entry{
				URL:  bazarakiRealEstate + c.path + "/" + d.slug + "/?ordering=newest",
				Site: listing.SiteBazaraki,
				Area: listing.Ptr(d.area),
				Kind: listing.Ptr(c.kind),
			})
		}
	}
	return entries
}

// Default returns a copy of the built-in seed table.
func Default() []Entry {
	out := make([]Entry, len(defaults))
	copy(out, defaults)
	return out
}

// Select returns the entries matching f, preserving table order.
func Select(entries []Entry, f Filter) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.Site != nil && e.Site != *f.Site {
			continue
		}
		if f.Area != nil && (e.Area == nil || *e.Area != *f.Area) {
			continue
		}
		if f.Kind != nil && (e.Kind == nil || *e.Kind != *f.Kind) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// URLs returns the search URLs of entries.
func URLs(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.URL)
	}
	return out
}

// Validate checks every entry holds an absolute http(s) URL and a known site.
func Validate(entries []Entry) error {
	for i, e := range entries {
		u, err := url.Parse(e.URL)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidSeed, i, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: entry %d: %q is not an absolute http(s) URL", ErrInvalidSeed, i, e.URL)
		}
		if _, err := listing.ParseSite(string(e.Site)); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidSeed, i, err)
		}
	}
	return nil
}

// file is the YAML layout of a seed override file.
type file struct {
	Seeds []struct {
		URL  string `yaml:"url"`
		Site string `yaml:"site"`
		Area string `yaml:"area,omitempty"`
		Kind string `yaml:"kind,omitempty"`
	} `yaml:"seeds"`
}

// Load reads a seed table from a YAML file:
//
//	seeds:
//	  - url: https://www.bazaraki.com/real-estate/land-and-plot/?ordering=newest
//	    site: bazaraki
//	    area: limassol
//	    kind: plot
//
// Site defaults to Bazaraki. The result is validated.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-selected seed file
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidSeed, path, err)
	}
	if len(f.Seeds) == 0 {
		return nil, fmt.Errorf("%w: %s has no seeds", ErrInvalidSeed, path)
	}

	entries := make([]Entry, 0, len(f.Seeds))
	for i, s := range f.Seeds {
		e := Entry{URL: s.URL, Site: listing.SiteBazaraki}
		if s.Site != "" {
			site, err := listing.ParseSite(s.Site)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidSeed, i, err)
			}
			e.Site = site
		}
		if s.Area != "" {
			area, err := listing.ParseArea(s.Area)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidSeed, i, err)
			}
			e.Area = &area
		}
		if s.Kind != "" {
			kind, err := listing.ParseKind(s.Kind)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidSeed, i, err)
			}
			e.Kind = &kind
		}
		entries = append(entries, e)
	}

	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
