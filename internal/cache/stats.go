package cache

import (
	"slices"
	"time"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// Group aggregates the records of one kind in one area.
type Group struct {
	Kind        listing.Kind
	Area        listing.Area
	Records     int
	URLs        int
	MedianPrice uint64
	LastFetched time.Time
}

// Stats aggregates a set of records.
type Stats struct {
	Records     int
	URLs        int
	LastFetched time.Time
	Groups      []Group // sorted by kind, then area
}

// Summarize groups records by kind and area.
func Summarize(records []listing.Listing) Stats {
	type key struct {
		kind listing.Kind
		area listing.Area
	}
	type acc struct {
		urls   map[string]bool
		prices []uint64
		last   time.Time
	}

	var s Stats
	all := make(map[string]bool)
	groups := make(map[key]*acc)

	for _, l := range records {
		c := l.Info()
		k := key{l.Kind(), c.Area}
		a, ok := groups[k]
		if !ok {
			a = &acc{urls: make(map[string]bool)}
			groups[k] = a
		}
		a.urls[c.URL] = true
		a.prices = append(a.prices, c.Price)
		if c.FetchedAt.After(a.last) {
			a.last = c.FetchedAt
		}
		if c.FetchedAt.After(s.LastFetched) {
			s.LastFetched = c.FetchedAt
		}
		all[c.URL] = true
		s.Records++
	}
	s.URLs = len(all)

	for k, a := range groups {
		s.Groups = append(s.Groups, Group{
			Kind:        k.kind,
			Area:        k.area,
			Records:     len(a.prices),
			URLs:        len(a.urls),
			MedianPrice: median(a.prices),
			LastFetched: a.last,
		})
	}
	slices.SortFunc(s.Groups, func(a, b Group) int {
		if a.Kind != b.Kind {
			if a.Kind < b.Kind {
				return -1
			}
			return 1
		}
		switch {
		case a.Area < b.Area:
			return -1
		case a.Area > b.Area:
			return 1
		}
		return 0
	})
	return s
}

// median returns the lower median of prices.
func median(prices []uint64) uint64 {
	if len(prices) == 0 {
		return 0
	}
	sorted := slices.Clone(prices)
	slices.Sort(sorted)
	return sorted[(len(sorted)-1)/2]
}
