package repo

import (
	datapuur "github.com/genaimavericks/datapuur-export"
	"github.com/genaimavericks/datapuur-export/internal/api/models"

	"gorm.io/gorm"
)

type DatasetRepository struct {
	Db *gorm.DB
}

func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{Db: datapuur.DB}
}

func (r *DatasetRepository) FindByID(id string) (models.Dataset, error) {
	var dataset models.Dataset
	err := r.Db.Preload("Connection").First(&dataset, "id = ?", id).Error
	return dataset, err
}

// FindPage returns one page of datasets plus the unpaginated total. Search
// matches the display name and the short dataset name, newest first.
func (r *DatasetRepository) FindPage(page, limit int, search string) ([]models.Dataset, int64, error) {
	query := r.Db.Model(&models.Dataset{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR dataset_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var datasets []models.Dataset
	err := query.
		Order("uploaded_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&datasets).Error
	return datasets, total, err
}

func (r *DatasetRepository) Create(dataset *models.Dataset) error {
	return r.Db.Create(dataset).Error
}
