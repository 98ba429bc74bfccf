package request

// ListDatasets is the query for the paginated dataset catalog.
type ListDatasets struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// DatasetPreview is the query for an unfiltered preview page.
type DatasetPreview struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
	MaxRows  int `form:"max_rows"`
}

// DatasetFilter is the query for a filtered preview page. All three filter
// fields are required; partial filters are rejected without touching a source.
type DatasetFilter struct {
	Column   string `form:"column" validate:"required"`
	Operator string `form:"operator" validate:"required,oneof=eq neq gt lt gte lte contains"`
	Value    string `form:"value" validate:"required"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	MaxRows  int    `form:"max_rows"`
}

// DatasetDownload is the query for the per-dataset CSV download.
type DatasetDownload struct {
	Format   string `form:"format"`
	Column   string `form:"column"`
	Operator string `form:"operator"`
	Value    string `form:"value"`
}

// FilteredDownload is the query for the cross-format filtered download.
type FilteredDownload struct {
	DatasetID  string `form:"dataset_id" validate:"required"`
	FileFormat string `form:"file_format" validate:"required,oneof=csv json xlsx"`
	Column     string `form:"column"`
	Operator   string `form:"operator"`
	Value      string `form:"value"`
	MaxRows    int    `form:"max_rows"`
}
