package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

// Open connects to the catalog datastore. A postgres DSN selects
// postgres; an empty DSN falls back to a local sqlite file so the
// service runs without external infrastructure.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		gdb *gorm.DB
		err error
	)
	if dsn == "" {
		log.Info("connecting to sqlite", "path", "library.db")
		gdb, err = gorm.Open(sqlite.Open("library.db"), cfg)
	} else {
		log.Info("connecting to postgres")
		gdb, err = gorm.Open(postgres.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the four catalog tables and the
// title/category join table.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Creator{},
		&model.Category{},
		&model.Title{},
		&model.Copy{},
	)
}

// OpenEphemeral opens a throwaway in-memory database with the schema
// migrated, for tests. Each call gets its own database.
func OpenEphemeral() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
