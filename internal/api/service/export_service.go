package service

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	datapuur "github.com/genaimavericks/datapuur-export"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/response"
	"github.com/genaimavericks/datapuur-export/internal/api/models"
	"github.com/genaimavericks/datapuur-export/internal/api/repo"
	"github.com/genaimavericks/datapuur-export/pkg"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrUnsafeQuery     = errors.New("dataset source query is not a plain SELECT")
)

type ExportService struct {
	datasetRepo *repo.DatasetRepository
	activity    *ActivityPublisher
	cfg         datapuur.ExportConfig
	logger      zerolog.Logger

	// openConn is swapped for a mock in tests.
	openConn func(conn models.DataConnection) (*sql.DB, error)
}

func NewExportService(activity *ActivityPublisher) *ExportService {
	return &ExportService{
		datasetRepo: repo.NewDatasetRepository(),
		activity:    activity,
		cfg:         datapuur.GetConfig().ExportConfig,
		logger:      datapuur.Logger,
		openConn:    openSourceDB,
	}
}

func openSourceDB(conn models.DataConnection) (*sql.DB, error) {
	db, err := sql.Open(conn.GetDriverName(), conn.BuildConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	db.SetConnMaxLifetime(30 * time.Second)
	db.SetMaxOpenConns(2)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}
	return db, nil
}

// ListDatasets returns one page of the dataset catalog plus the total match count.
func (s *ExportService) ListDatasets(page, limit int, search string) ([]models.Dataset, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	datasets, total, err := s.datasetRepo.FindPage(page, limit, search)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing datasets")
		return nil, 0, err
	}
	return datasets, total, nil
}

// GetDataset resolves a dataset by id, mostly for filename derivation.
func (s *ExportService) GetDataset(id string) (models.Dataset, error) {
	return s.findDataset(id)
}

// Preview returns one unfiltered page of dataset rows.
func (s *ExportService) Preview(id string, page, pageSize, maxRows int, actor string) (*response.PreviewPage, error) {
	return s.FilteredPreview(id, models.Filter{}, page, pageSize, maxRows, actor)
}

// FilteredPreview returns one page of rows with an optional single-predicate filter.
// The visible row universe is clamped to min(maxRows, MaxPreviewRows) so pagination
// stays bounded no matter how large the dataset is.
func (s *ExportService) FilteredPreview(id string, filter models.Filter, page, pageSize, maxRows int, actor string) (*response.PreviewPage, error) {
	if !filter.IsZero() {
		if err := filter.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.cfg.PreviewPageSize
	}

	dataset, err := s.findDataset(id)
	if err != nil {
		return nil, err
	}

	source, err := datasetSource(dataset)
	if err != nil {
		return nil, err
	}

	db, err := s.openConn(dataset.Connection)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	dbType := dataset.Connection.DbType
	total, err := s.countRows(db, dataset.ID, source, dbType, filter)
	if err != nil {
		return nil, err
	}

	ceiling := s.cfg.MaxPreviewRows
	if maxRows > 0 && maxRows < ceiling {
		ceiling = maxRows
	}

	visible := total
	if visible > int64(ceiling) {
		visible = int64(ceiling)
	}
	totalPages := int((visible + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	columns, rows, err := s.fetchPage(db, source, dbType, filter, page, pageSize, ceiling)
	if err != nil {
		return nil, err
	}

	s.activity.Publish(dataset.ID, "preview", activityDetail(actor, map[string]any{
		"page": page, "filtered": !filter.IsZero(),
	}))

	return &response.PreviewPage{
		Columns:    columns,
		Rows:       rows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

// StreamDownload writes every matching row to w in the requested format,
// truncated to maxRows when the override is positive. Returns the file
// extension for the suggested filename.
func (s *ExportService) StreamDownload(id string, format string, filter models.Filter, maxRows int, actor string, w io.Writer) (string, error) {
	if !filter.IsZero() {
		if err := filter.Validate(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	dataset, err := s.findDataset(id)
	if err != nil {
		return "", err
	}

	source, err := datasetSource(dataset)
	if err != nil {
		return "", err
	}

	db, err := s.openConn(dataset.Connection)
	if err != nil {
		return "", err
	}
	defer db.Close()

	dbType := dataset.Connection.DbType
	query, args := buildExportQuery(source, dbType, filter, maxRows, 0)

	rows, err := db.Query(query, args...)
	if err != nil {
		return "", fmt.Errorf("export query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to get column names: %w", err)
	}

	writer, ext, err := newExportWriter(format, w)
	if err != nil {
		return "", err
	}
	if err := writer.WriteHeader(columns); err != nil {
		return "", err
	}

	written := 0
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return "", fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := writer.WriteRow(values); err != nil {
			return "", err
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("row iteration failed: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", err
	}

	s.activity.Publish(dataset.ID, "download", activityDetail(actor, map[string]any{
		"format": format, "rows": written, "filtered": !filter.IsZero(),
	}))

	s.logger.Info().Str("datasetId", dataset.ID).Str("format", format).Int("rows", written).Msg("Dataset exported")
	return ext, nil
}

// ---- internal helpers ----

// activityDetail tags an event detail with the acting user when one is known.
func activityDetail(actor string, detail map[string]any) map[string]any {
	if actor != "" {
		detail["user"] = actor
	}
	return detail
}

func (s *ExportService) findDataset(id string) (models.Dataset, error) {
	dataset, err := s.datasetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Dataset{}, ErrDatasetNotFound
		}
		s.logger.Error().Err(err).Str("datasetId", id).Msg("Error getting dataset")
		return models.Dataset{}, err
	}
	return dataset, nil
}

// datasetSource returns the FROM target for the dataset: the landed table, or the
// source SELECT wrapped as a subquery. Source queries must be plain SELECTs.
func datasetSource(d models.Dataset) (string, error) {
	if d.SourceQuery != "" {
		if !pkg.IsSafeSelect(d.SourceQuery) {
			return "", ErrUnsafeQuery
		}
		return fmt.Sprintf("(%s)", d.SourceQuery), nil
	}
	return models.QuoteIdentifier(d.TableName, d.Connection.DbType), nil
}

// countRows resolves the matching row count, consulting the Redis cache first.
// Counts over large landed tables are the expensive part of every preview.
func (s *ExportService) countRows(db *sql.DB, datasetID, source string, dbType models.DBType, filter models.Filter) (int64, error) {
	cacheKey := fmt.Sprintf("export:%s:rowcount:%s|%s|%s", datasetID, filter.Column, filter.Operator, filter.Value)

	var cached int64
	if datapuur.Redis != nil {
		if err := pkg.RedisGet(cacheKey, &cached); err == nil {
			return cached, nil
		} else if !pkg.IsRedisNil(err) {
			s.logger.Warn().Err(err).Msg("Row count cache read failed")
		}
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s AS _export", source)
	var args []interface{}
	if !filter.IsZero() {
		cond, arg := filter.SQLCondition(dbType, 1)
		query += " WHERE " + cond
		args = append(args, arg)
	}

	var total int64
	if err := db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	if datapuur.Redis != nil {
		if err := pkg.RedisSet(cacheKey, total, s.cfg.RowCountTTL); err != nil {
			s.logger.Warn().Err(err).Msg("Row count cache write failed")
		}
	}
	return total, nil
}

// fetchPage reads one page of rows, never crossing the preview ceiling.
func (s *ExportService) fetchPage(db *sql.DB, source string, dbType models.DBType, filter models.Filter, page, pageSize, ceiling int) ([]string, []map[string]interface{}, error) {
	offset := (page - 1) * pageSize
	limit := pageSize
	if offset >= ceiling {
		limit = 0
	} else if offset+limit > ceiling {
		limit = ceiling - offset
	}

	query, args := buildPageQuery(source, dbType, filter, limit, offset)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("preview query failed: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// buildPageQuery assembles a paginated SELECT over the dataset source.
func buildPageQuery(source string, dbType models.DBType, filter models.Filter, limit, offset int) (string, []interface{}) {
	var args []interface{}
	where := ""
	if !filter.IsZero() {
		cond, arg := filter.SQLCondition(dbType, 1)
		where = " WHERE " + cond
		args = append(args, arg)
	}

	if dbType == models.DBTypeSQLServer {
		if limit == 0 {
			// FETCH NEXT rejects a zero row count; TOP 0 returns the column
			// set with no rows
			return fmt.Sprintf("SELECT TOP 0 * FROM %s AS _export%s", source, where), args
		}
		// OFFSET-FETCH requires an ORDER BY; landed tables have no natural key
		return fmt.Sprintf("SELECT * FROM %s AS _export%s ORDER BY (SELECT NULL) OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
			source, where, offset, limit), args
	}
	return fmt.Sprintf("SELECT * FROM %s AS _export%s LIMIT %d OFFSET %d", source, where, limit, offset), args
}

// buildExportQuery assembles the unpaginated download SELECT, with the optional
// row-limit override applied as a LIMIT.
func buildExportQuery(source string, dbType models.DBType, filter models.Filter, maxRows, _ int) (string, []interface{}) {
	var args []interface{}
	where := ""
	if !filter.IsZero() {
		cond, arg := filter.SQLCondition(dbType, 1)
		where = " WHERE " + cond
		args = append(args, arg)
	}

	if maxRows > 0 {
		if dbType == models.DBTypeSQLServer {
			return fmt.Sprintf("SELECT TOP %d * FROM %s AS _export%s", maxRows, source, where), args
		}
		return fmt.Sprintf("SELECT * FROM %s AS _export%s LIMIT %d", source, where, maxRows), args
	}
	return fmt.Sprintf("SELECT * FROM %s AS _export%s", source, where), args
}

// scanRows reads all rows from a *sql.Rows into column-keyed maps.
func scanRows(rows *sql.Rows) ([]string, []map[string]interface{}, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get column names: %w", err)
	}

	result := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(colNames))
		valuePtrs := make([]interface{}, len(colNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(colNames))
		for i, col := range colNames {
			val := values[i]
			// Convert []byte to string for JSON serialization
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return colNames, result, nil
}
