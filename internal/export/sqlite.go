package export

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jmylchreest/truffles/pkg/listing"
)

// PlotRow is the SQLite row for a plot listing.
type PlotRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ListingID   string    `gorm:"type:varchar(64);not null;index"`
	URL         string    `gorm:"type:text;not null;index"`
	Site        string    `gorm:"type:varchar(32);not null"`
	FetchedAt   time.Time `gorm:"type:datetime;not null;index"`
	Area        string    `gorm:"type:varchar(32);not null;index"`
	Price       uint64    `gorm:"not null"`
	Size        *uint32
	Kind        *string `gorm:"type:varchar(32)"`
	CoveragePct *uint32 `gorm:"column:coverage_ratio_pct"`
	DensityPct  *uint32 `gorm:"column:density_ratio_pct"`
	MaxHeightM  *float64
	MaxStoreys  *uint32
}

// TableName specifies the table name
func (PlotRow) TableName() string {
	return "plots"
}

// PropertyRow is the SQLite row for a property listing.
type PropertyRow struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	ListingID        string    `gorm:"type:varchar(64);not null;index"`
	URL              string    `gorm:"type:text;not null;index"`
	Site             string    `gorm:"type:varchar(32);not null"`
	FetchedAt        time.Time `gorm:"type:datetime;not null;index"`
	Area             string    `gorm:"type:varchar(32);not null;index"`
	Price            uint64    `gorm:"not null"`
	Size             *uint32
	Kind             string  `gorm:"type:varchar(32);not null"`
	Condition        *string `gorm:"type:varchar(32)"`
	ConstructionYear *uint32
	BedroomCount     *uint8
	BathroomCount    *uint8
	PostalCode       *uint32
}

// TableName specifies the table name
func (PropertyRow) TableName() string {
	return "properties"
}

func plotRow(p *listing.Plot) PlotRow {
	row := PlotRow{
		ListingID:   p.ID,
		URL:         p.URL,
		Site:        string(p.Site),
		FetchedAt:   p.FetchedAt.UTC(),
		Area:        string(p.Area),
		Price:       p.Price,
		Size:        p.Size,
		CoveragePct: p.CoveragePct,
		DensityPct:  p.DensityPct,
		MaxHeightM:  p.MaxHeightM,
		MaxStoreys:  p.MaxStoreys,
	}
	if p.Type != nil {
		row.Kind = listing.Ptr(string(*p.Type))
	}
	return row
}

func propertyRow(p *listing.Property) PropertyRow {
	row := PropertyRow{
		ListingID:        p.ID,
		URL:              p.URL,
		Site:             string(p.Site),
		FetchedAt:        p.FetchedAt.UTC(),
		Area:             string(p.Area),
		Price:            p.Price,
		Size:             p.Size,
		Kind:             string(p.Type),
		ConstructionYear: p.ConstructionYear,
		BedroomCount:     p.Bedrooms,
		BathroomCount:    p.Bathrooms,
		PostalCode:       p.PostalCode,
	}
	if p.Condition != nil {
		row.Condition = listing.Ptr(string(*p.Condition))
	}
	return row
}

// OpenSQLite opens (creating if needed) a SQLite database and migrates the
// listing tables.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&PlotRow{}, &PropertyRow{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// SQLite replaces the contents of the plots and properties tables at path
// with listings, in a single transaction.
func SQLite(path string, listings []listing.Listing) (Counts, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return Counts{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Counts{}, err
	}
	defer sqlDB.Close()

	var plots []PlotRow
	var properties []PropertyRow
	for _, l := range listings {
		switch v := l.(type) {
		case *listing.Plot:
			plots = append(plots, plotRow(v))
		case *listing.Property:
			properties = append(properties, propertyRow(v))
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&PlotRow{}).Error; err != nil {
			return fmt.Errorf("clear plots: %w", err)
		}
		if err := all.Delete(&PropertyRow{}).Error; err != nil {
			return fmt.Errorf("clear properties: %w", err)
		}
		if len(plots) > 0 {
			if err := tx.CreateInBatches(plots, batchSize).Error; err != nil {
				return fmt.Errorf("insert plots: %w", err)
			}
		}
		if len(properties) > 0 {
			if err := tx.CreateInBatches(properties, batchSize).Error; err != nil {
				return fmt.Errorf("insert properties: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	return Counts{Plots: len(plots), Properties: len(properties)}, nil
}
