package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DataSource supplies dataset listings and preview pages. The remote source
// talks to the export API; the fixture source serves static demo data; the
// fallback source degrades from one to the other so the UI never goes blank.
// Downloads are deliberately not part of this interface, they never fall back.
type DataSource interface {
	ListDatasets(ctx context.Context, page, limit int, search string) (*DatasetList, error)
	FetchPreview(ctx context.Context, id string, filter *Filter, page int) (*PreviewPage, error)
}

type remoteSource struct {
	c *Client
}

func (r *remoteSource) ListDatasets(ctx context.Context, page, limit int, search string) (*DatasetList, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if search != "" {
		query.Set("search", search)
	}

	var list DatasetList
	if err := r.c.getJSON(ctx, "/api/export/datasets", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *remoteSource) FetchPreview(ctx context.Context, id string, filter *Filter, page int) (*PreviewPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(r.c.pageSize))
	query.Set("max_rows", strconv.Itoa(r.c.maxPreviewRows))

	path := fmt.Sprintf("/api/export/datasets/%s/preview", url.PathEscape(id))
	if filter != nil {
		path = fmt.Sprintf("/api/export/datasets/%s/filter", url.PathEscape(id))
		query.Set("column", filter.Column)
		query.Set("operator", filter.Operator)
		query.Set("value", filter.Value)
	}

	var preview PreviewPage
	if err := r.c.getJSON(ctx, path, query, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// fixtureSource serves deterministic demo data so the pipeline stays usable
// when the export API is unreachable.
type fixtureSource struct {
	datasets []DatasetSummary
	columns  []string
}

func newFixtureSource() *fixtureSource {
	uploaded := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	return &fixtureSource{
		datasets: []DatasetSummary{
			{ID: "fixture-1", Name: "sales_sample.csv", DatasetName: "Sales Sample", Type: "csv", SizeBytes: 20480, UploadedAt: uploaded, UploadedBy: "demo", SourceType: "file"},
			{ID: "fixture-2", Name: "customers_sample.csv", DatasetName: "Customers Sample", Type: "csv", SizeBytes: 10240, UploadedAt: uploaded, UploadedBy: "demo", SourceType: "file"},
		},
		columns: []string{"id", "name", "region", "amount"},
	}
}

func (f *fixtureSource) ListDatasets(_ context.Context, _, _ int, _ string) (*DatasetList, error) {
	datasets := make([]DatasetSummary, len(f.datasets))
	copy(datasets, f.datasets)
	return &DatasetList{Datasets: datasets, Total: int64(len(datasets))}, nil
}

func (f *fixtureSource) FetchPreview(_ context.Context, id string, _ *Filter, page int) (*PreviewPage, error) {
	const total = 30
	pageSize := DefaultPageSize

	rows := []map[string]interface{}{}
	start := (page - 1) * pageSize
	for i := start; i < start+pageSize && i < total; i++ {
		rows = append(rows, map[string]interface{}{
			"id":     i + 1,
			"name":   fmt.Sprintf("demo row %d", i+1),
			"region": []string{"north", "south", "east", "west"}[i%4],
			"amount": float64((i + 1) * 10),
		})
	}

	return &PreviewPage{
		Columns:    f.columns,
		Rows:       rows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: TotalPages(total, DefaultMaxPreviewRows, pageSize),
	}, nil
}

// fallbackSource tries the primary source and substitutes fallback data on
// failure, reporting the substitution through a DegradedError.
type fallbackSource struct {
	primary  DataSource
	fallback DataSource
	logger   zerolog.Logger
}

func (s *fallbackSource) ListDatasets(ctx context.Context, page, limit int, search string) (*DatasetList, error) {
	list, err := s.primary.ListDatasets(ctx, page, limit, search)
	if err == nil {
		return list, nil
	}
	s.logger.Warn().Err(err).Msg("dataset listing failed, serving fixture data")

	list, ferr := s.fallback.ListDatasets(ctx, page, limit, search)
	if ferr != nil {
		return nil, err
	}
	return list, &DegradedError{Err: err}
}

func (s *fallbackSource) FetchPreview(ctx context.Context, id string, filter *Filter, page int) (*PreviewPage, error) {
	preview, err := s.primary.FetchPreview(ctx, id, filter, page)
	if err == nil {
		return preview, nil
	}
	s.logger.Warn().Err(err).Str("datasetId", id).Msg("preview fetch failed, serving fixture data")

	preview, ferr := s.fallback.FetchPreview(ctx, id, filter, page)
	if ferr != nil {
		return nil, err
	}
	return preview, &DegradedError{Err: err}
}
