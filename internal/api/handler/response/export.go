package response

import (
	"time"
)

// DatasetSummary is one catalog entry in the dataset listing.
type DatasetSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DatasetName string    `json:"datasetName,omitempty"`
	Type        string    `json:"type"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
	UploadedBy  string    `json:"uploadedBy"`
	SourceType  string    `json:"sourceType"`
	RowCount    *int64    `json:"rowCount,omitempty"`
}

// DatasetList is the paginated catalog response.
type DatasetList struct {
	Datasets []DatasetSummary `json:"datasets"`
	Total    int64            `json:"total"`
}

// PreviewPage is one page of rows plus column metadata. Column order defines
// the rendered column order.
type PreviewPage struct {
	Columns    []string                 `json:"columns"`
	Rows       []map[string]interface{} `json:"rows"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalRows  int64                    `json:"total_rows"`
	TotalPages int                      `json:"total_pages"`
}
