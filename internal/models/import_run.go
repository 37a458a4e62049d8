package models

import (
	"time"

	"gorm.io/datatypes"
)

// Import run outcomes.
const (
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportRun records the provenance of one batch import: where the rows came
// from, how many entities the run touched, and the per-file row counts.
type ImportRun struct {
	ID               uint           `gorm:"column:id;primaryKey" json:"id"`
	SourcePath       string         `gorm:"column:source_path;not null" json:"source_path"`
	Status           string         `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Error            string         `gorm:"column:error" json:"error,omitempty"`
	FileCount        int            `gorm:"column:file_count;not null;default:0" json:"file_count"`
	RowCount         int            `gorm:"column:row_count;not null;default:0" json:"row_count"`
	ProjectCount     int            `gorm:"column:project_count;not null;default:0" json:"project_count"`
	LocationsCreated int            `gorm:"column:locations_created;not null;default:0" json:"locations_created"`
	RowsPerFile      datatypes.JSON `gorm:"column:rows_per_file" json:"rows_per_file,omitempty"`
	StartedAt        time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt       time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
