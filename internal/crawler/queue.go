// Package crawler expands seed search pages into listing URLs and turns
// those listings into stored records.
package crawler

import (
	"net/url"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// URLSet is an insertion-ordered set of listing URLs. URLs with the same
// listing.URLKey are the same listing; the first spelling seen is kept,
// minus its fragment.
type URLSet struct {
	items []string
	seen  map[string]bool
}

// NewURLSet creates an empty set.
func NewURLSet() *URLSet {
	return &URLSet{
		items: make([]string, 0),
		seen:  make(map[string]bool),
	}
}

// Add inserts rawURL if no equivalent URL is present. Relative and
// unparseable URLs are rejected.
func (s *URLSet) Add(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""

	key := listing.URLKey(parsed.String())
	if s.seen[key] {
		return false
	}

	s.seen[key] = true
	s.items = append(s.items, parsed.String())
	return true
}

// Len returns the number of distinct URLs.
func (s *URLSet) Len() int {
	return len(s.items)
}

// Items returns the URLs in insertion order.
func (s *URLSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// IsSameDomain checks if two URLs are on the same domain.
func IsSameDomain(url1, url2 string) bool {
	parsed1, err := url.Parse(url1)
	if err != nil {
		return false
	}
	parsed2, err := url.Parse(url2)
	if err != nil {
		return false
	}
	return parsed1.Host == parsed2.Host
}
