package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/truffles/pkg/listing"
)

var base = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func property(url string, area listing.Area, fetchedAt time.Time) *listing.Property {
	return &listing.Property{
		Common: listing.Common{
			ID:        "bazaraki_" + filepath.Base(url),
			URL:       url,
			Site:      listing.SiteBazaraki,
			FetchedAt: fetchedAt,
			Area:      area,
			Price:     200000,
		},
		Type:      listing.PropertyApartment,
		Condition: listing.Ptr(listing.ConditionNew),
		Bedrooms:  listing.Ptr(uint8(2)),
	}
}

func plot(url string, area listing.Area, fetchedAt time.Time) *listing.Plot {
	return &listing.Plot{
		Common: listing.Common{
			ID:        "bazaraki_" + filepath.Base(url),
			URL:       url,
			Site:      listing.SiteBazaraki,
			FetchedAt: fetchedAt,
			Area:      area,
			Price:     80000,
			Size:      listing.Ptr(uint32(600)),
		},
		Type:        listing.Ptr(listing.PlotResidential),
		CoveragePct: listing.Ptr(uint32(35)),
	}
}

func fixtures() []listing.Listing {
	return []listing.Listing{
		property("https://www.bazaraki.com/adv/1/", listing.AreaLimassol, base),
		plot("https://www.bazaraki.com/adv/2/", listing.AreaPaphos, base),
		property("https://www.bazaraki.com/adv/1/", listing.AreaLimassol, base.Add(72*time.Hour)),
		property("https://www.bazaraki.com/adv/3/", listing.AreaLefkosia, base),
	}
}

func TestFilter(t *testing.T) {
	all := fixtures()

	assert.Len(t, Filter(all, Options{}), 4)
	assert.Len(t, Filter(all, Options{Kind: listing.Ptr(listing.KindPlot)}), 1)
	assert.Len(t, Filter(all, Options{Area: listing.Ptr(listing.AreaLimassol)}), 2)

	latest := Filter(all, Options{Latest: true})
	require.Len(t, latest, 3)
	assert.Equal(t, "https://www.bazaraki.com/adv/1/", latest[0].Info().URL)
	assert.True(t, latest[0].Info().FetchedAt.Equal(base.Add(72*time.Hour)), "newest record should win")
}

func TestRun_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")

	counts, err := Run(fixtures(), Options{Format: "json", Path: path, Latest: true})
	require.NoError(t, err)
	assert.Equal(t, Counts{Plots: 1, Properties: 2}, counts)
	assert.Equal(t, 3, counts.Total())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 3)
}

func TestFilter_LatestMatchesEquivalentURLs(t *testing.T) {
	all := []listing.Listing{
		property("https://www.bazaraki.com/adv/1/", listing.AreaLimassol, base),
		property("https://www.bazaraki.com/adv/1", listing.AreaLimassol, base.Add(time.Hour)),
	}

	latest := Filter(all, Options{Latest: true})
	require.Len(t, latest, 1)
	assert.True(t, latest[0].Info().FetchedAt.Equal(base.Add(time.Hour)))
}

func TestRun_CompactJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")

	_, err := Run(fixtures(), Options{Format: "json", Path: path, Compact: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestRun_UnknownFormat(t *testing.T) {
	_, err := Run(fixtures(), Options{Format: "xlsx", Path: filepath.Join(t.TempDir(), "out")})
	assert.Error(t, err)
}

func TestRun_SQLiteNeedsPath(t *testing.T) {
	_, err := Run(fixtures(), Options{Format: "sqlite"})
	assert.Error(t, err)
}

func TestSQLite_ReplacesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truffles.db")

	counts, err := SQLite(path, fixtures())
	require.NoError(t, err)
	assert.Equal(t, Counts{Plots: 1, Properties: 3}, counts)

	// A second export replaces rather than appends.
	counts, err = SQLite(path, fixtures()[:2])
	require.NoError(t, err)
	assert.Equal(t, Counts{Plots: 1, Properties: 1}, counts)

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var n int64
	require.NoError(t, db.Model(&PropertyRow{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	var p PlotRow
	require.NoError(t, db.First(&p).Error)
	assert.Equal(t, "bazaraki_2", p.ListingID)
	require.NotNil(t, p.Kind)
	assert.Equal(t, "Residential", *p.Kind)
	require.NotNil(t, p.CoveragePct)
	assert.Equal(t, uint32(35), *p.CoveragePct)
	assert.Nil(t, p.MaxHeightM)
}
