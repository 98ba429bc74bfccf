package mapper

import (
	"github.com/genaimavericks/datapuur-export/internal/api/handler/response"
	"github.com/genaimavericks/datapuur-export/internal/api/models"
)

type DatasetMapper struct{}

func NewDatasetMapper() DatasetMapper {
	return DatasetMapper{}
}

func (DatasetMapper) ToDatasetSummary(d models.Dataset) response.DatasetSummary {
	return response.DatasetSummary{
		ID:          d.ID,
		Name:        d.Name,
		DatasetName: d.DatasetName,
		Type:        d.Type,
		SizeBytes:   d.SizeBytes,
		UploadedAt:  d.UploadedAt,
		UploadedBy:  d.UploadedBy,
		SourceType:  string(d.SourceType),
		RowCount:    d.RowCount,
	}
}

func (m DatasetMapper) ToDatasetList(datasets []models.Dataset, total int64) response.DatasetList {
	summaries := make([]response.DatasetSummary, 0, len(datasets))
	for _, d := range datasets {
		summaries = append(summaries, m.ToDatasetSummary(d))
	}
	return response.DatasetList{Datasets: summaries, Total: total}
}
