package infra

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lujangrego99/kiosco-sub000/internal/model"
)

// SchemaVersion is the current layout of the local database. Stored in the
// config table so a future layout change can detect and migrate old files.
const SchemaVersion = 1

// NewDatabase opens (or creates) the local SQLite file and migrates it to the
// current schema. WAL mode keeps catalog reads available while a sync
// transaction is writing; the busy timeout covers the brief overlap between
// the UI reader and the sync writer.
//
// Use ":memory:" as path for throwaway databases in tests.
func NewDatabase(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY churn between the sync engine and checkout.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate local schema: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.Categoria{},
		&model.VentaLocal{},
		&model.VentaLocalItem{},
		&model.ConfigEntry{},
	); err != nil {
		return err
	}

	// Stamp the schema version on first open; later versions will branch on
	// the stored value before AutoMigrate.
	var entry model.ConfigEntry
	err := db.Where("clave = ?", model.ConfigSchemaVersion).First(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&model.ConfigEntry{
			Clave: model.ConfigSchemaVersion,
			Valor: cast.ToString(SchemaVersion),
		}).Error
	case err != nil:
		return err
	}

	if v := cast.ToInt(entry.Valor); v > SchemaVersion {
		return fmt.Errorf("local database schema v%d is newer than supported v%d", v, SchemaVersion)
	}
	return nil
}
