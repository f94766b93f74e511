package model

import (
	"time"

	"gorm.io/datatypes"
)

// LoadBatch records one ingestion of an input extract. The checksum is the
// content-addressed idempotency key: re-running the pipeline against an
// unchanged file finds its checksum here and skips the staging append
// instead of re-appending duplicates.
type LoadBatch struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Checksum    string         `json:"checksum" gorm:"column:checksum;uniqueIndex;type:char(64);not null"`
	SourceFile  string         `json:"source_file" gorm:"column:source_file;type:text"`
	RowsLoaded  int            `json:"rows_loaded" gorm:"column:rows_loaded"`
	RowsDropped int            `json:"rows_dropped" gorm:"column:rows_dropped"`
	Stats       datatypes.JSON `json:"stats,omitempty" gorm:"type:jsonb;column:stats"` // Per-reason drop counts and other run details
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the LoadBatch model.
func (LoadBatch) TableName() string {
	return "load_batches"
}
