// Package export writes a snapshot of the cached listings to a file or
// database for analysis outside truffles.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmylchreest/truffles/internal/logger"
	"github.com/jmylchreest/truffles/internal/output"
	"github.com/jmylchreest/truffles/pkg/listing"
)

// FormatSQLite exports into a SQLite database instead of a text stream.
const FormatSQLite = "sqlite"

const batchSize = 500

// Counts reports how many listings of each kind were exported.
type Counts struct {
	Plots      int
	Properties int
}

// Total returns the number of exported listings.
func (c Counts) Total() int {
	return c.Plots + c.Properties
}

// Options selects what and where to export.
type Options struct {
	Format  string // json, jsonl, yaml or sqlite
	Path    string // destination; "" or "-" writes text formats to stdout
	Area    *listing.Area
	Kind    *listing.Kind
	Latest  bool // keep only the newest record per URL
	Compact bool // single-line JSON arrays
}

// Filter returns the listings matching opts, in their original order.
func Filter(listings []listing.Listing, opts Options) []listing.Listing {
	var out []listing.Listing
	latest := make(map[string]int)
	for _, l := range listings {
		c := l.Info()
		if opts.Area != nil && c.Area != *opts.Area {
			continue
		}
		if opts.Kind != nil && l.Kind() != *opts.Kind {
			continue
		}
		if opts.Latest {
			key := listing.URLKey(c.URL)
			if i, ok := latest[key]; ok {
				if c.FetchedAt.After(out[i].Info().FetchedAt) {
					out[i] = l
				}
				continue
			}
			latest[key] = len(out)
		}
		out = append(out, l)
	}
	return out
}

// Run filters listings and writes them in the requested format.
func Run(listings []listing.Listing, opts Options) (Counts, error) {
	selected := Filter(listings, opts)

	if strings.EqualFold(opts.Format, FormatSQLite) {
		if opts.Path == "" || opts.Path == "-" {
			return Counts{}, fmt.Errorf("sqlite export needs a file path")
		}
		counts, err := SQLite(opts.Path, selected)
		if err != nil {
			return Counts{}, err
		}
		logger.Info("exported", "format", FormatSQLite, "path", opts.Path, "plots", counts.Plots, "properties", counts.Properties)
		return counts, nil
	}

	format, err := output.ParseFormat(opts.Format)
	if err != nil {
		return Counts{}, err
	}

	dst := os.Stdout
	if opts.Path != "" && opts.Path != "-" {
		f, err := os.Create(opts.Path) //#nosec G304 -- user-selected export file
		if err != nil {
			return Counts{}, fmt.Errorf("create %s: %w", opts.Path, err)
		}
		defer f.Close()
		dst = f
	}

	w, err := output.NewWriter(dst, format, output.WithPretty(!opts.Compact))
	if err != nil {
		return Counts{}, err
	}
	if err := output.WriteAll(w, selected); err != nil {
		return Counts{}, fmt.Errorf("write %s: %w", format, err)
	}

	counts := count(selected)
	logger.Info("exported", "format", format, "path", opts.Path, "plots", counts.Plots, "properties", counts.Properties)
	return counts, nil
}

func count(listings []listing.Listing) Counts {
	var c Counts
	for _, l := range listings {
		if l.Kind() == listing.KindPlot {
			c.Plots++
		} else {
			c.Properties++
		}
	}
	return c
}
