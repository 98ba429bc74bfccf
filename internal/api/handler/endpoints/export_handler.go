package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	datapuur "github.com/genaimavericks/datapuur-export"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/mapper"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/middleware"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/request"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/response"
	"github.com/genaimavericks/datapuur-export/internal/api/models"
	"github.com/genaimavericks/datapuur-export/internal/api/service"
	"github.com/genaimavericks/datapuur-export/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var exportContentTypes = map[string]string{
	"csv":  "text/csv",
	"json": "application/json",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type exportHandler struct {
	exportService *service.ExportService
	datasetMapper mapper.DatasetMapper
	config        datapuur.AppConfig
	logger        zerolog.Logger
}

func newExportHandler(exportService *service.ExportService) *exportHandler {
	return &exportHandler{
		exportService: exportService,
		datasetMapper: mapper.NewDatasetMapper(),
		config:        datapuur.GetConfig(),
		logger:        datapuur.Logger,
	}
}

func ExportHandler(router *graceful.Graceful, exportService *service.ExportService) {
	h := newExportHandler(exportService)

	routes := router.Group("/api/export")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/datasets", h.list)
		routes.GET("/datasets/:id/preview", h.preview)
		routes.GET("/datasets/:id/filter", h.filter)

		// viewers can browse but not export
		downloads := routes.Group("")
		downloads.Use(middleware.RequireRole(models.RoleAdmin, models.RoleUser))
		downloads.GET("/datasets/:id/download", h.download)
		downloads.GET("/download", h.filteredDownload)
	}
}

func (h *exportHandler) list(c *gin.Context) {
	var req request.ListDatasets
	if err := pkg.ParseQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	datasets, total, err := h.exportService.ListDatasets(req.Page, req.Limit, req.Search)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list datasets")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve datasets"})
		return
	}

	c.JSON(http.StatusOK, h.datasetMapper.ToDatasetList(datasets, total))
}

func (h *exportHandler) preview(c *gin.Context) {
	var req request.DatasetPreview
	if err := pkg.ParseQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	page, err := h.exportService.Preview(c.Param("id"), req.Page, req.PageSize, req.MaxRows, pkg.GetUserEmail(c))
	if err != nil {
		h.respondServiceError(c, err, "Failed to preview dataset")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *exportHandler) filter(c *gin.Context) {
	var req request.DatasetFilter
	if err := pkg.ParseQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	filter := models.Filter{Column: req.Column, Operator: req.Operator, Value: req.Value}
	page, err := h.exportService.FilteredPreview(c.Param("id"), filter, req.Page, req.PageSize, req.MaxRows, pkg.GetUserEmail(c))
	if err != nil {
		h.respondServiceError(c, err, "Failed to filter dataset")
		return
	}

	c.JSON(http.StatusOK, page)
}

// download is the plain per-dataset CSV export, named <base>_export.csv.
func (h *exportHandler) download(c *gin.Context) {
	var req request.DatasetDownload
	if err := pkg.ParseQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	id := c.Param("id")
	dataset, err := h.exportService.GetDataset(id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to resolve dataset")
		return
	}

	filter := models.Filter{Column: req.Column, Operator: req.Operator, Value: req.Value}
	base := strings.TrimSuffix(dataset.Name, filepath.Ext(dataset.Name))
	h.streamExport(c, id, req.Format, filter, 0, fmt.Sprintf("%s_export.%s", base, req.Format))
}

// filteredDownload is the richer path combining format, filter and the
// optional row-limit override.
func (h *exportHandler) filteredDownload(c *gin.Context) {
	var req request.FilteredDownload
	if err := pkg.ParseQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	dataset, err := h.exportService.GetDataset(req.DatasetID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to resolve dataset")
		return
	}

	filter := models.Filter{Column: req.Column, Operator: req.Operator, Value: req.Value}
	base := strings.TrimSuffix(dataset.Name, filepath.Ext(dataset.Name))
	h.streamExport(c, req.DatasetID, req.FileFormat, filter, req.MaxRows, fmt.Sprintf("%s_filtered.%s", base, req.FileFormat))
}

func (h *exportHandler) streamExport(c *gin.Context, id, format string, filter models.Filter, maxRows int, filename string) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, response.APIError{Message: fmt.Sprintf("unsupported format %q", format)})
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := h.exportService.StreamDownload(id, format, filter, maxRows, pkg.GetUserEmail(c), c.Writer); err != nil {
		// Headers may already be out; all we can do is log and cut the stream
		h.logger.Error().Err(err).Str("datasetId", id).Str("format", format).Msg("Export stream failed")
		c.Abort()
	}
}

func (h *exportHandler) respondServiceError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrDatasetNotFound):
		c.JSON(http.StatusNotFound, response.APIError{Message: "Dataset not found"})
	case errors.Is(err, service.ErrInvalidFilter), errors.Is(err, service.ErrUnsafeQuery):
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
	default:
		h.logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, response.APIError{Message: msg})
	}
}
