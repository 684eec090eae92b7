// interfaces.go defines the interface for the database operations
package datastore

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the enrichment pipeline needs.
type Interface interface {
	Open() error
	Close() error
	Save(record *ImageRecord) error
	Get(filename string) (ImageRecord, error)
	Exists(filename string) (bool, error)
	KnownFilenames() (map[string]bool, error)
	UpdatePreserving(filename string, update *FieldUpdate) error
	CommitBatch(records []*ImageRecord) error
	SearchByDescription(query string, limit, offset int) ([]ImageRecord, error)
	Recent(limit int) ([]ImageRecord, error)
	GetStats() (Stats, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store instance based on the provided configuration. It
// returns nil when no output database is enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// Save inserts a new record. When the filename already exists the insert is
// redirected to a field-preserving update so that provenance columns written
// by an earlier run survive.
func (ds *DataStore) Save(record *ImageRecord) error {
	if ds.DB == nil {
		return errSchemaNotReady()
	}

	err := ds.DB.Create(record).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ds.UpdatePreserving(record.Filename, &FieldUpdate{
			Description: record.Description,
			Keywords:    record.Keywords,
			Confidence:  record.Confidence,
			Status:      record.Status,
			ProcessedAt: record.ProcessedAt,
		})
	}
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", "save").
		Context("filename", record.Filename).
		Build()
}

// Get retrieves a record by filename.
func (ds *DataStore) Get(filename string) (ImageRecord, error) {
	if ds.DB == nil {
		return ImageRecord{}, errSchemaNotReady()
	}

	var record ImageRecord
	err := ds.DB.Where("filename = ?", filename).First(&record).Error
	if err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return ImageRecord{}, errors.New(err).
			Component("datastore").
			Category(category).
			Context("operation", "get").
			Context("filename", filename).
			Build()
	}
	return record, nil
}

// Exists reports whether a record for the filename is already stored.
func (ds *DataStore) Exists(filename string) (bool, error) {
	if ds.DB == nil {
		return false, errSchemaNotReady()
	}

	var count int64
	err := ds.DB.Model(&ImageRecord{}).Where("filename = ?", filename).Count(&count).Error
	if err != nil {
		return false, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "exists").
			Build()
	}
	return count > 0, nil
}

// KnownFilenames returns the set of filenames already in the store. It backs
// the process-new-only mode, which skips anything in this set.
func (ds *DataStore) KnownFilenames() (map[string]bool, error) {
	if ds.DB == nil {
		return nil, errSchemaNotReady()
	}

	var names []string
	err := ds.DB.Model(&ImageRecord{}).Pluck("filename", &names).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "known_filenames").
			Build()
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return known, nil
}

// UpdatePreserving rewrites only the enrichment columns of an existing
// record. The explicit Select makes GORM write zero values too, so a lowered
// confidence or a cleared country is not silently dropped.
func (ds *DataStore) UpdatePreserving(filename string, update *FieldUpdate) error {
	if ds.DB == nil {
		return errSchemaNotReady()
	}

	processedAt := update.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	result := ds.DB.Model(&ImageRecord{}).
		Where("filename = ?", filename).
		Select("description", "keywords", "confidence", "status", "processed_at").
		Updates(ImageRecord{
			Description: update.Description,
			Keywords:    update.Keywords,
			Confidence:  update.Confidence,
			Status:      update.Status,
			ProcessedAt: processedAt,
		})
	if result.Error != nil {
		return errors.New(result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "update_preserving").
			Context("filename", filename).
			Build()
	}
	if result.RowsAffected == 0 {
		return errors.Newf("no record for filename %s", filename).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("operation", "update_preserving").
			Build()
	}
	return nil
}

// CommitBatch stores a batch of records in a single transaction. Inserts that
// collide with an existing filename degrade to a field-preserving update
// inside the same transaction, so a batch either lands completely or not at
// all.
func (ds *DataStore) CommitBatch(records []*ImageRecord) error {
	if ds.DB == nil {
		return errSchemaNotReady()
	}
	if len(records) == 0 {
		return nil
	}

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			err := tx.Create(record).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			processedAt := record.ProcessedAt
			if processedAt.IsZero() {
				processedAt = time.Now()
			}
			res := tx.Model(&ImageRecord{}).
				Where("filename = ?", record.Filename).
				Select("description", "keywords", "confidence", "status", "processed_at").
				Updates(ImageRecord{
					Description: record.Description,
					Keywords:    record.Keywords,
					Confidence:  record.Confidence,
					Status:      record.Status,
					ProcessedAt: processedAt,
				})
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "commit_batch").
			Context("batch_size", len(records)).
			Build()
	}
	return nil
}

// SearchByDescription returns records matching the query as a substring of
// the description, keywords, country or filename. Results are ranked by where
// the match occurred, description matches first, then newest first within a
// rank.
func (ds *DataStore) SearchByDescription(query string, limit, offset int) ([]ImageRecord, error) {
	if ds.DB == nil {
		return nil, errSchemaNotReady()
	}

	pattern := "%" + query + "%"
	var records []ImageRecord
	err := ds.DB.
		Where("description LIKE ? OR keywords LIKE ? OR country LIKE ? OR filename LIKE ?",
			pattern, pattern, pattern, pattern).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN description LIKE ? THEN 0 WHEN keywords LIKE ? THEN 1 WHEN country LIKE ? THEN 2 ELSE 3 END, processed_at DESC",
			Vars: []interface{}{pattern, pattern, pattern},
		}}).
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "search").
			Build()
	}
	return records, nil
}

// Recent returns the most recently processed records.
func (ds *DataStore) Recent(limit int) ([]ImageRecord, error) {
	if ds.DB == nil {
		return nil, errSchemaNotReady()
	}

	var records []ImageRecord
	err := ds.DB.Order("processed_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "recent").
			Build()
	}
	return records, nil
}

// GetStats aggregates record counts by status and country.
func (ds *DataStore) GetStats() (Stats, error) {
	if ds.DB == nil {
		return Stats{}, errSchemaNotReady()
	}

	var stats Stats
	model := func() *gorm.DB { return ds.DB.Model(&ImageRecord{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return Stats{}, statsError(err)
	}
	if err := model().Where("status = ?", StatusProcessed).Count(&stats.Processed).Error; err != nil {
		return Stats{}, statsError(err)
	}
	if err := model().Where("status = ?", StatusPending).Count(&stats.Pending).Error; err != nil {
		return Stats{}, statsError(err)
	}
	if err := model().Where("status = ?", StatusFailed).Count(&stats.Failed).Error; err != nil {
		return Stats{}, statsError(err)
	}

	err := model().
		Select("country, COUNT(*) as count").
		Where("country <> ''").
		Group("country").
		Order("count DESC, country ASC").
		Limit(10).
		Scan(&stats.Countries).Error
	if err != nil {
		return Stats{}, statsError(err)
	}
	return stats, nil
}

func statsError(err error) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", "stats").
		Build()
}

func errSchemaNotReady() error {
	return errors.Newf("database connection is not initialized").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
}
