package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/truffles/pkg/listing"
)

func loadCache(t *testing.T, dir string) *Cache {
	t.Helper()
	c, err := Load(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoad_CreatesFilesWithHeader(t *testing.T) {
	dir := t.TempDir()
	c := loadCache(t, dir)
	assert.Equal(t, 0, c.Len())

	for _, kind := range listing.Kinds() {
		data, err := os.ReadFile(filepath.Join(dir, FileName(kind)))
		require.NoError(t, err)
		assert.Equal(t, strings.Join(Header(kind), ",")+"\n", string(data))
	}
}

func TestLoad_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".truffles")
	loadCache(t, dir)

	_, err := os.Stat(filepath.Join(dir, "plots.csv"))
	assert.NoError(t, err)
}

func TestCache_LastSeen_Unknown(t *testing.T) {
	c := loadCache(t, t.TempDir())

	_, ok := c.LastSeen("https://www.bazaraki.com/adv/unknown/")
	assert.False(t, ok)
}

func TestCache_AddAndReload(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)

	plot, property := fullPlot(), fullProperty()
	require.NoError(t, c.Add(plot))
	require.NoError(t, c.Add(property))

	seen, ok := c.LastSeen(plot.URL)
	require.True(t, ok)
	assert.True(t, seen.Equal(plot.FetchedAt))
	require.NoError(t, c.Close())

	reloaded := loadCache(t, dir)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, []listing.Listing{plot, property}, reloaded.records)

	seen, ok = reloaded.LastSeen(property.URL)
	require.True(t, ok)
	assert.True(t, seen.Equal(property.FetchedAt))

	// Reopening an existing file must not write a second header.
	data, err := os.ReadFile(filepath.Join(dir, "plots.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "coverage_ratio_pct"))
}

func TestCache_AddSameURLTwice(t *testing.T) {
	c := loadCache(t, t.TempDir())

	first := fullProperty()
	second := fullProperty()
	second.FetchedAt = first.FetchedAt.Add(48 * time.Hour)

	require.NoError(t, c.Add(second))
	require.NoError(t, c.Add(first))

	assert.Equal(t, 2, c.Len())
	seen, ok := c.LastSeen(first.URL)
	require.True(t, ok)
	assert.True(t, seen.Equal(second.FetchedAt), "LastSeen should report the newest fetch")
}

func TestCache_AddSameRecordTwice(t *testing.T) {
	c := loadCache(t, t.TempDir())

	l := fullPlot()
	require.NoError(t, c.Add(l))
	require.NoError(t, c.Add(l))

	assert.Equal(t, 2, c.Len())
	assert.Len(t, c.index[listing.URLKey(l.URL)], 2)
}

func TestCache_LastSeen_EquivalentSpellings(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)

	l := fullProperty()
	require.NoError(t, c.Add(l))
	require.NoError(t, c.Close())

	reloaded := loadCache(t, dir)
	for _, u := range []string{
		"https://www.bazaraki.com/adv/2_house/",
		"https://www.bazaraki.com/adv/2_house",
		"https://www.bazaraki.com/adv/2_house/#photos",
		"https://WWW.bazaraki.com/adv/2_house",
	} {
		seen, ok := reloaded.LastSeen(u)
		if assert.True(t, ok, "LastSeen(%q)", u) {
			assert.True(t, seen.Equal(l.FetchedAt))
		}
	}

	_, ok := reloaded.LastSeen("https://www.bazaraki.com/adv/2_house/photos")
	assert.False(t, ok)
}

func TestCache_AddInvalidListing(t *testing.T) {
	c := loadCache(t, t.TempDir())

	err := c.Add(&listing.Property{Common: testCommon("not a url", time.Now())})
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Equal(t, 0, c.Len())
}

func TestCache_AddAfterClose(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = c.Add(fullPlot())
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, 0, c.Len(), "failed appends must not be indexed")
}

func TestReadAll_MissingDirIsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")

	records, err := ReadAll(dir)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "ReadAll must not create the data directory")
}

func TestReadAll_LeavesFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, c.Add(fullPlot()))
	require.NoError(t, c.Close())
	require.NoError(t, os.Remove(filepath.Join(dir, "properties.csv")))

	before, err := os.ReadFile(filepath.Join(dir, "plots.csv"))
	require.NoError(t, err)

	records, err := ReadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, []listing.Listing{fullPlot()}, records)

	after, err := os.ReadFile(filepath.Join(dir, "plots.csv"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(filepath.Join(dir, "properties.csv"))
	assert.True(t, os.IsNotExist(err), "ReadAll must not create missing files")
}

func TestReadAll_CorruptRow(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join(Header(listing.KindPlot), ",") + "\n" +
		"bazaraki_1,https://www.bazaraki.com/adv/1/,Bazaraki,2024-05-01T10:00:00Z,Limassol,abc,,,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plots.csv"), []byte(content), 0o644))

	_, err := ReadAll(dir)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestLoad_HeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	bad := "id,url,site,fetched_at,area,price,size,kind,coverage,density,height,storeys\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plots.csv"), []byte(bad), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "store format")
}

func TestLoad_CorruptRow(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join(Header(listing.KindProperty), ",") + "\n" +
		"bazaraki_1,https://www.bazaraki.com/adv/1/,Bazaraki,not-a-time,Limassol,1000,,House,,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "properties.csv"), []byte(content), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestLoad_EmptyFileGetsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "properties.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	loadCache(t, dir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,url,site,fetched_at"))
}
