package catalog

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// entryRow is the relational shape of a catalog entry. Same columns as the
// CSV contract, one table.
type entryRow struct {
	FilmID      string `gorm:"column:film_id;primaryKey"`
	Title       string `gorm:"column:title;not null"`
	Director    string `gorm:"column:director"`
	Year        int    `gorm:"column:year"`
	Genre       string `gorm:"column:genre"`
	Category    string `gorm:"column:category;not null"`
	Description string `gorm:"column:description"`
	Keywords    string `gorm:"column:keywords"`
	Mood        string `gorm:"column:mood"`
	BlockID     string `gorm:"column:block_id"`
	Position    int    `gorm:"column:position;index"`
}

func (entryRow) TableName() string { return "catalog_entries" }

// SQLiteStore loads the catalog from an embedded sqlite database instead of
// a CSV file. Load order is the persisted position column, so the
// catalog/vector alignment contract holds across both sources.
type SQLiteStore struct {
	log *logger.Logger
	db  *gorm.DB
}

func NewSQLiteStore(log *logger.Logger, path string) (*SQLiteStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, dataErr("sqlite_open", DataErrorOpenFailed, path, err)
	}
	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, dataErr("sqlite_open", DataErrorOpenFailed, "automigrate catalog_entries", err)
	}
	return &SQLiteStore{
		log: log.With("service", "CatalogSQLite"),
		db:  db,
	}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Catalog, error) {
	var rows []entryRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, dataErr("sqlite_load", DataErrorParseFailed, "select catalog_entries", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			ID:          r.FilmID,
			Title:       r.Title,
			Director:    r.Director,
			Year:        r.Year,
			Genre:       r.Genre,
			Category:    r.Category,
			Description: r.Description,
			Keywords:    r.Keywords,
			Mood:        r.Mood,
			BlockID:     r.BlockID,
		})
	}

	cat, err := New(entries)
	if err != nil {
		return nil, err
	}
	s.log.Info("Catalog loaded from sqlite", "entries", cat.Len())
	return cat, nil
}

// Seed replaces the stored table with the given catalog, preserving order.
func (s *SQLiteStore) Seed(ctx context.Context, cat *Catalog) error {
	if cat == nil || cat.Len() == 0 {
		return dataErr("sqlite_seed", DataErrorEmptyCatalog, "nothing to seed", nil)
	}

	rows := make([]entryRow, 0, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		e := cat.Entry(i)
		rows = append(rows, entryRow{
			FilmID:      e.ID,
			Title:       e.Title,
			Director:    e.Director,
			Year:        e.Year,
			Genre:       e.Genre,
			Category:    e.Category,
			Description: e.Description,
			Keywords:    e.Keywords,
			Mood:        e.Mood,
			BlockID:     e.BlockID,
			Position:    i,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entryRow{}).Error; err != nil {
			return fmt.Errorf("clear catalog_entries: %w", err)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert catalog_entries: %w", err)
		}
		return nil
	})
}
