package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkSelector extracts listing links from a result page.
type LinkSelector struct {
	CSSSelector string         // CSS selector for listing anchors
	URLPattern  *regexp.Regexp // Regex pattern for URLs to keep
}

// NewLinkSelector creates a link selector.
func NewLinkSelector(cssSelector string, urlPattern string) (*LinkSelector, error) {
	ls := &LinkSelector{
		CSSSelector: cssSelector,
	}

	if urlPattern != "" {
		pattern, err := regexp.Compile(urlPattern)
		if err != nil {
			return nil, err
		}
		ls.URLPattern = pattern
	}

	return ls, nil
}

// ExtractLinks returns the distinct links matched by the selector, resolved
// against root. Links to other hosts are dropped.
func (ls *LinkSelector) ExtractLinks(doc *goquery.Document, root string) ([]string, error) {
	base, err := url.Parse(root)
	if err != nil {
		return nil, err
	}

	var links []string
	seen := make(map[string]bool)

	selector := ls.CSSSelector
	if selector == "" {
		selector = "a[href]"
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}

		// Skip fragments and javascript links
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		linkURL = base.ResolveReference(linkURL)
		linkURL.Fragment = ""
		fullURL := linkURL.String()

		if !IsSameDomain(root, fullURL) {
			return
		}
		if ls.URLPattern != nil && !ls.URLPattern.MatchString(fullURL) {
			return
		}
		if seen[fullURL] {
			return
		}
		seen[fullURL] = true

		links = append(links, fullURL)
	})

	return links, nil
}

// PaginationSelector reads the page-number links of a search result page.
type PaginationSelector struct {
	PageSelector string // CSS selector for numbered page links
	Param        string // query parameter selecting a page
}

// NewPaginationSelector creates a pagination selector using the "page"
// query parameter.
func NewPaginationSelector(pageSelector string) *PaginationSelector {
	return &PaginationSelector{
		PageSelector: pageSelector,
		Param:        "page",
	}
}

// PageCount returns the highest page number linked from doc.
func (ps *PaginationSelector) PageCount(doc *goquery.Document) (int, bool) {
	if ps.PageSelector == "" {
		return 0, false
	}

	highest := 0
	doc.Find(ps.PageSelector).Each(func(_ int, s *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err == nil && n > highest {
			highest = n
		}
	})

	return highest, highest > 0
}

// Pages returns one URL per page number from 1 to n inclusive.
func (ps *PaginationSelector) Pages(searchURL string, n int) ([]string, error) {
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		u := *base
		q := u.Query()
		q.Set(ps.Param, strconv.Itoa(i))
		u.RawQuery = q.Encode()
		pages = append(pages, u.String())
	}
	return pages, nil
}
