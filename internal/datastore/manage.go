package datastore

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tkalin/phototag-go/internal/errors"
	"github.com/tkalin/phototag-go/internal/logging"
)

// slowQueryThreshold defines the duration after which a query is considered
// slow and logged at warning level.
const slowQueryThreshold = 1 * time.Second

// serviceLogger falls back to the default logger when structured logging has
// not been initialized, as happens in tests.
func serviceLogger() *slog.Logger {
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default()
}

// slogWriter adapts the service logger to GORM's logger writer.
type slogWriter struct {
	log *slog.Logger
}

func (w *slogWriter) Printf(format string, args ...any) {
	w.log.Info(fmt.Sprintf(format, args...))
}

// createGormLogger configures a GORM logger on top of the service logger.
// Debug mode logs every statement, normal operation only warnings and slow
// queries.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(&slogWriter{log: serviceLogger()}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// performAutoMigration runs the GORM schema migration for the image record
// table.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&ImageRecord{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migration").
			Context("db_type", dbType).
			Build()
	}

	if debug {
		serviceLogger().Debug("database connection initialized",
			"db_type", dbType,
			"connection", connectionInfo)
	}
	return nil
}

func closeDB(db *gorm.DB, driver string) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Context("driver", driver).
			Build()
	}
	if err := sqlDB.Close(); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Context("driver", driver).
			Build()
	}
	return nil
}
