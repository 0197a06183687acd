package store

import (
	"ecofix/backend/go/internal/models"

	"gorm.io/gorm/clause"
)

// --- Sustainability Scores ---

// UpsertScore 写入用户最近一次的评分，每个用户只保留一行。
func (s *Store) UpsertScore(score *models.SustainabilityScore) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "breakdown", "suggestions", "last_updated"}),
	}).Create(score).Error
}

// GetScore 返回用户已保存的评分。
func (s *Store) GetScore(userID uint) (*models.SustainabilityScore, error) {
	var score models.SustainabilityScore
	if err := s.DB.Where("user_id = ?", userID).First(&score).Error; err != nil {
		return nil, translate(err)
	}
	return &score, nil
}
