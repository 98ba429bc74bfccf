// Package client implements the dataset export pipeline consumed by DataPuur
// front-ends: paginated previews, per-dataset filter state, and filtered
// downloads against the export API.
package client

import "time"

// DatasetSummary is one catalog entry returned by the listing endpoint.
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
// the order cells are rendered in.
type PreviewPage struct {
	Columns    []string                 `json:"columns"`
	Rows       []map[string]interface{} `json:"rows"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalRows  int64                    `json:"total_rows"`
	TotalPages int                      `json:"total_pages"`
}

// Filter is a single column/operator/value predicate applied server-side.
// A filter is either fully populated or absent.
type Filter struct {
	Column   string
	Operator string
	Value    string
}
