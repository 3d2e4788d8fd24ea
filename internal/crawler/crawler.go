package crawler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/truffles/internal/extract"
	"github.com/jmylchreest/truffles/internal/logger"
	"github.com/jmylchreest/truffles/internal/throttle"
	"github.com/jmylchreest/truffles/pkg/fetcher"
	"github.com/jmylchreest/truffles/pkg/listing"
)

// Site describes how to crawl one source website.
type Site struct {
	Name            listing.Site
	Root            string            // base for resolving listing links
	PageSelector    string            // numbered pagination links
	ListingSelector string            // listing title anchors on result pages
	ListingPattern  string            // regexp a resolved listing URL must match
	Headers         map[string]string // sent with every request
	Parse           extract.Parser    // detail page parser
}

// Bazaraki returns the profile of bazaraki.com. Adverts are requested in
// English, the language the extractor's patterns are written for first.
func Bazaraki() Site {
	return Site{
		Name:            listing.SiteBazaraki,
		Root:            "https://www.bazaraki.com",
		PageSelector:    "a.page-number.js-page-filter",
		ListingSelector: "a.announcement-block__title",
		ListingPattern:  `^https://www\.bazaraki\.com/adv/\d+`,
		Headers:         map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
		Parse:           extract.ParseBazaraki,
	}
}

// SiteFor returns the profile of a supported site.
func SiteFor(name listing.Site) (Site, error) {
	switch name {
	case listing.SiteBazaraki:
		return Bazaraki(), nil
	}
	return Site{}, fmt.Errorf("unsupported site %q", name)
}

// Config holds engine configuration.
type Config struct {
	Throttle time.Duration   // minimum interval between requests (negative = default)
	Fetch    fetcher.Options // per-request transport options
}

// DefaultConfig returns sensible engine defaults.
func DefaultConfig() Config {
	return Config{
		Throttle: throttle.DefaultInterval,
		Fetch: fetcher.Options{
			UserAgent: fetcher.DefaultUserAgent,
			Timeout:   30 * time.Second,
		},
	}
}

// Engine fetches pages of a single site, one request at a time. Every
// request waits on the same throttler, whichever stage issues it.
type Engine struct {
	fetcher   fetcher.Fetcher
	throttler *throttle.Throttler
	site      Site
	config    Config
	links     *LinkSelector
	pages     *PaginationSelector
	now       func() time.Time
}

// NewEngine creates an engine for site.
func NewEngine(f fetcher.Fetcher, site Site, cfg Config) (*Engine, error) {
	if site.Parse == nil {
		return nil, fmt.Errorf("site %q has no parser", site.Name)
	}
	links, err := NewLinkSelector(site.ListingSelector, site.ListingPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid link selector: %w", err)
	}

	// Site headers first so explicitly configured ones override them.
	if len(site.Headers) > 0 {
		headers := make(map[string]string, len(site.Headers)+len(cfg.Fetch.Headers))
		maps.Copy(headers, site.Headers)
		maps.Copy(headers, cfg.Fetch.Headers)
		cfg.Fetch.Headers = headers
	}

	return &Engine{
		fetcher:   f,
		throttler: throttle.New(cfg.Throttle),
		site:      site,
		config:    cfg,
		links:     links,
		pages:     NewPaginationSelector(site.PageSelector),
		now:       time.Now,
	}, nil
}

// Site returns the engine's site profile.
func (e *Engine) Site() Site {
	return e.site
}

// get waits for the throttler and fetches url as a parsed document.
func (e *Engine) get(ctx context.Context, url string) (*goquery.Document, error) {
	if err := e.throttler.Tick(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := e.fetcher.Fetch(ctx, url, e.config.Fetch)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched", "url", url, "status", content.StatusCode,
		"bytes", len(content.HTML), "duration", time.Since(start).Round(time.Millisecond))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", extract.ErrStructure, err)
	}
	return doc, nil
}

// ResultPages fetches each search root and expands it into one URL per
// result page. Roots that fail to load or have no pagination contribute
// nothing and are logged. Only a cancelled context is returned as an error.
func (e *Engine) ResultPages(ctx context.Context, searchURLs []string) ([]string, error) {
	var pages []string
	for _, searchURL := range searchURLs {
		doc, err := e.get(ctx, searchURL)
		if err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			logger.Warn("search page skipped", "url", searchURL, "error", err)
			continue
		}

		n, ok := e.pages.PageCount(doc)
		if !ok {
			logger.Warn("no pagination found", "url", searchURL)
			continue
		}

		expanded, err := e.pages.Pages(searchURL, n)
		if err != nil {
			logger.Warn("search page skipped", "url", searchURL, "error", err)
			continue
		}
		logger.Info("result pages", "url", searchURL, "pages", n)
		pages = append(pages, expanded...)
	}
	return pages, nil
}

// ListingURLs fetches every result page and collects the distinct listing
// URLs they link to, in discovery order.
func (e *Engine) ListingURLs(ctx context.Context, pages []string) (*URLSet, error) {
	set := NewURLSet()
	for _, page := range pages {
		doc, err := e.get(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			logger.Warn("result page skipped", "url", page, "error", err)
			continue
		}

		links, err := e.links.ExtractLinks(doc, e.site.Root)
		if err != nil {
			logger.Warn("result page skipped", "url", page, "error", err)
			continue
		}

		added := 0
		for _, link := range links {
			if set.Add(link) {
				added++
			}
		}
		logger.Debug("listings discovered", "url", page, "links", len(links), "new", added)
	}
	return set, nil
}

// Listing fetches and parses a single listing page.
func (e *Engine) Listing(ctx context.Context, url string) (listing.Listing, error) {
	doc, err := e.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return e.site.Parse(doc, url, e.now())
}

// Store records parsed listings. *cache.Cache implements it.
type Store interface {
	LastSeen(url string) (time.Time, bool)
	Add(l listing.Listing) error
}

// RunOptions controls a crawl run.
type RunOptions struct {
	SearchURLs []string      // search roots to expand
	Freshness  time.Duration // skip listings fetched more recently than this; 0 skips none
	Force      bool          // fetch every listing regardless of freshness
}

// Summary reports what a run did.
type Summary struct {
	SearchURLs int
	Pages      int
	Discovered int
	Fresh      int
	Fetched    int
	Stored     int
	Failed     int
	Duration   time.Duration
}

// Run crawls opts.SearchURLs into store. Discovery of every listing URL
// completes before the freshness filter runs and before any listing is
// fetched. Listings that fail to fetch or parse are logged and skipped.
// Run returns storage errors, which abort the crawl, and context errors.
func Run(ctx context.Context, e *Engine, store Store, opts RunOptions) (Summary, error) {
	start := time.Now()
	sum := Summary{SearchURLs: len(opts.SearchURLs)}

	if opts.Freshness < 0 {
		return sum, fmt.Errorf("negative freshness %s", opts.Freshness)
	}

	logger.Info("crawl starting", "site", e.site.Name, "seeds", len(opts.SearchURLs),
		"throttle", e.throttler.Interval(), "freshness", opts.Freshness, "force", opts.Force)

	pages, err := e.ResultPages(ctx, opts.SearchURLs)
	sum.Pages = len(pages)
	if err != nil {
		return finish(sum, start), err
	}

	set, err := e.ListingURLs(ctx, pages)
	sum.Discovered = set.Len()
	if err != nil {
		return finish(sum, start), err
	}

	due := dueListings(set.Items(), store, e.now(), opts)
	sum.Fresh = sum.Discovered - len(due)
	logger.Info("listings discovered", "total", sum.Discovered, "fresh", sum.Fresh, "due", len(due))

	for _, url := range due {
		l, err := e.Listing(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return finish(sum, start), ctx.Err()
			}
			sum.Failed++
			logger.Warn("listing skipped", "url", url, "error", err, "reason", failureReason(err))
			continue
		}
		sum.Fetched++

		if err := store.Add(l); err != nil {
			logger.Error("storing listing failed", "url", url, "error", err)
			return finish(sum, start), fmt.Errorf("store %s: %w", url, err)
		}
		sum.Stored++
		logger.Info("stored", "url", url, "kind", l.Kind(), "area", l.Info().Area, "price", l.Info().Price)
	}

	sum = finish(sum, start)
	logger.Info("crawl finished", "pages", sum.Pages, "discovered", sum.Discovered,
		"stored", sum.Stored, "failed", sum.Failed, "duration", sum.Duration.Round(time.Second))
	return sum, nil
}

func finish(sum Summary, start time.Time) Summary {
	sum.Duration = time.Since(start)
	return sum
}

// dueListings drops URLs fetched within the freshness window unless forced.
func dueListings(urls []string, store Store, now time.Time, opts RunOptions) []string {
	if opts.Force {
		return urls
	}
	due := make([]string, 0, len(urls))
	for _, u := range urls {
		if last, ok := store.LastSeen(u); ok && now.Sub(last) < opts.Freshness {
			logger.Debug("listing still fresh", "url", u, "last_seen", last)
			continue
		}
		due = append(due, u)
	}
	return due
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnclassified):
		return "unclassified"
	case errors.Is(err, extract.ErrStructure):
		return "structure"
	case errors.Is(err, fetcher.ErrTransport), errors.Is(err, fetcher.ErrNotText):
		return "transport"
	}
	return "unknown"
}
