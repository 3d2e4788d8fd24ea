// Package cache persists crawled listings in append-only CSV files, one per
// listing kind, and answers when a listing URL was last fetched.
//
// Records are never updated in place. A re-fetched listing is appended
// again, so a URL may map to several records; LastSeen reports the newest.
package cache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jmylchreest/truffles/internal/logger"
	"github.com/jmylchreest/truffles/internal/version"
	"github.com/jmylchreest/truffles/pkg/listing"
)

// ErrStorage indicates the durable store could not be read or written.
// Storage errors abort a crawl.
var ErrStorage = errors.New("storage error")

// Cache is an in-memory index over the CSV logs in a data directory. It is
// not safe for concurrent use.
type Cache struct {
	dir     string
	records []listing.Listing
	index   map[string][]int
	files   map[listing.Kind]*os.File
	writers map[listing.Kind]*csv.Writer
}

// Load reads every stored listing from dir and opens the per-kind files for
// appending. Missing files are created with a header row.
func Load(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
	}

	c := &Cache{
		dir:     dir,
		index:   make(map[string][]int),
		files:   make(map[listing.Kind]*os.File),
		writers: make(map[listing.Kind]*csv.Writer),
	}

	for _, kind := range listing.Kinds() {
		if err := c.read(kind); err != nil {
			_ = c.Close()
			return nil, err
		}
		if err := c.open(kind); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	logger.Debug("cache loaded", "dir", dir, "records", len(c.records), "urls", len(c.index))
	return c, nil
}

// ReadAll returns every stored listing in dir without opening the store for
// writing. A missing directory or file holds no listings.
func ReadAll(dir string) ([]listing.Listing, error) {
	c := &Cache{dir: dir, index: make(map[string][]int)}
	for _, kind := range listing.Kinds() {
		if err := c.read(kind); err != nil {
			return nil, err
		}
	}
	return c.records, nil
}

func (c *Cache) path(kind listing.Kind) string {
	return filepath.Join(c.dir, FileName(kind))
}

func (c *Cache) read(kind listing.Kind) error {
	path := c.path(kind)
	f, err := os.Open(path) //#nosec G304 -- path built from the data directory
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header(kind))

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s header: %v", ErrStorage, path, err)
	}
	if !slices.Equal(header, Header(kind)) {
		return fmt.Errorf("%w: %s has unexpected header %v, store format %d expects %v",
			ErrStorage, path, header, version.StoreFormat, Header(kind))
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
		}

		l, err := Decode(kind, row)
		if err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%w: %s line %d: %v", ErrStorage, path, line, err)
		}
		if err := listing.Validate(l); err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%w: %s line %d: %v", ErrStorage, path, line, err)
		}
		c.remember(l)
	}
}

func (c *Cache) open(kind listing.Kind) error {
	path := c.path(kind)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //#nosec G304 -- path built from the data directory
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	c.files[kind] = f
	w := csv.NewWriter(f)
	c.writers[kind] = w

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
	}
	if info.Size() == 0 {
		if err := write(w, Header(kind)); err != nil {
			return fmt.Errorf("%w: write %s header: %v", ErrStorage, path, err)
		}
	}
	return nil
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (c *Cache) remember(l listing.Listing) {
	key := listing.URLKey(l.Info().URL)
	c.index[key] = append(c.index[key], len(c.records))
	c.records = append(c.records, l)
}

// LastSeen returns the newest fetch time recorded for url. URLs are matched
// by listing.URLKey, so a trailing slash or fragment makes no difference.
func (c *Cache) LastSeen(url string) (time.Time, bool) {
	positions, ok := c.index[listing.URLKey(url)]
	if !ok {
		return time.Time{}, false
	}
	var latest time.Time
	for _, i := range positions {
		if t := c.records[i].Info().FetchedAt; t.After(latest) {
			latest = t
		}
	}
	return latest, true
}

// Add appends l to its kind's CSV file and then to the in-memory index.
// The listing is only indexed once the row has been flushed to disk.
func (c *Cache) Add(l listing.Listing) error {
	if err := listing.Validate(l); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	row, err := Encode(l)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	w, ok := c.writers[l.Kind()]
	if !ok {
		return fmt.Errorf("%w: no open file for %s listings", ErrStorage, l.Kind())
	}
	if err := write(w, row); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrStorage, c.path(l.Kind()), err)
	}

	c.remember(l)
	return nil
}

// Len returns the number of stored records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Close flushes and closes the CSV files.
func (c *Cache) Close() error {
	var errs []error
	for kind, f := range c.files {
		if w := c.writers[kind]; w != nil {
			w.Flush()
			errs = append(errs, w.Error())
		}
		errs = append(errs, f.Close())
		delete(c.files, kind)
		delete(c.writers, kind)
	}
	return errors.Join(errs...)
}
