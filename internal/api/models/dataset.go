package models

import (
	"time"

	"gorm.io/gorm"
)

// SourceType describes where a dataset came from.
type SourceType string

const (
	SourceTypeFile     SourceType = "file"
	SourceTypeDatabase SourceType = "database"
)

// Dataset is one ingested data asset available for preview and export. Rows are
// created by the ingestion pipeline and are read-only here: exports never mutate
// a dataset, they only read the backing table or source query.
type Dataset struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	DatasetName  string         `json:"datasetName,omitempty"`
	Type         string         `json:"type"`
	SizeBytes    int64          `json:"sizeBytes"`
	UploadedAt   time.Time      `json:"uploadedAt"`
	UploadedBy   string         `json:"uploadedBy"`
	SourceType   SourceType     `gorm:"type:varchar(20);default:file" json:"sourceType"`
	RowCount     *int64         `json:"rowCount,omitempty"`
	ConnectionID uint           `gorm:"not null" json:"connectionId"`
	Connection   DataConnection `gorm:"foreignKey:ConnectionID" json:"-"`
	// Exactly one of TableName / SourceQuery is set. TableName points at the landed
	// table for file ingests; SourceQuery is a SELECT for database-sourced datasets.
	TableName   string         `json:"tableName,omitempty"`
	SourceQuery string         `gorm:"type:text" json:"sourceQuery,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
