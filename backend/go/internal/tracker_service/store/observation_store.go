package store

import (
	"ecofix/backend/go/internal/models"
)

// --- Environmental Observations ---

// Page 是一页观测记录以及分页元数据。
type Page struct {
	Items      []models.EnvironmentalObservation `json:"items"`
	Page       int                               `json:"page"`
	TotalPages int                               `json:"totalPages"`
	Total      int64                             `json:"total"`
}

// CreateObservation 保存一条观测报告。
func (s *Store) CreateObservation(obs *models.EnvironmentalObservation) error {
	return s.DB.Create(obs).Error
}

// MapMarkers 返回所有观测的坐标与类型，供地图视图使用。
func (s *Store) MapMarkers() ([]models.MapMarker, error) {
	markers := []models.MapMarker{}
	err := s.DB.Model(&models.EnvironmentalObservation{}).
		Select("latitude", "longitude", "observation_type").
		Order("timestamp DESC").
		Find(&markers).Error
	return markers, err
}

// ListObservations 按时间倒序分页返回观测，obsType 为空时不过滤。
// page 越界时按分页器的习惯钳制：小于 1 取第一页，超过末页取末页。
func (s *Store) ListObservations(obsType models.ObservationType, page, pageSize int) (*Page, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	q := s.DB.Model(&models.EnvironmentalObservation{})
	if obsType != "" {
		q = q.Where("observation_type = ?", obsType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items := []models.EnvironmentalObservation{}
	err := q.Order("timestamp DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Page: page, TotalPages: totalPages, Total: total}, nil
}
