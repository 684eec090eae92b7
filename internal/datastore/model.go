// model.go defines the data model for enriched image metadata
package datastore

import "time"

// Record status values. Pending records carry metadata that failed the
// quality gate and await manual review. Failed records exhausted their
// retries during a sync run.
const (
	StatusProcessed = "processed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// ImageRecord represents the enriched metadata for a single image.
type ImageRecord struct {
	ID            uint     `gorm:"primaryKey"`
	Filename      string   `gorm:"uniqueIndex:idx_image_records_filename;not null"`
	Description   string   `gorm:"type:text"`
	Country       string   `gorm:"index:idx_image_records_country"`
	Keywords      []string `gorm:"serializer:json"`
	Confidence    float64
	SourceURL     string
	SourceType    string `gorm:"type:varchar(32)"`
	OriginalTitle string
	MetadataIsAI  bool
	Status        string `gorm:"index:idx_image_records_status;type:varchar(20)"`
	ProcessedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FieldUpdate carries the only columns a re-enrichment is allowed to touch.
// Provenance fields such as SourceURL and OriginalTitle are never overwritten
// once a record exists.
type FieldUpdate struct {
	Description string
	Keywords    []string
	Confidence  float64
	Status      string
	ProcessedAt time.Time
}

// CountryCount is one row of the per-country aggregate.
type CountryCount struct {
	Country string
	Count   int64
}

// Stats summarizes the state of the store.
type Stats struct {
	Total     int64
	Processed int64
	Pending   int64
	Failed    int64
	Countries []CountryCount
}
