package store

import (
	"time"

	"ecofix/backend/go/internal/models"
)

// --- Activity Records ---

// CreateActivity 保存一条活动记录。记录写入后不再修改。
func (s *Store) CreateActivity(activity *models.UserActivity) error {
	return s.DB.Create(activity).Error
}

// ListActivities 返回用户的全部活动，日期最新的在前。
func (s *Store) ListActivities(userID uint) ([]models.UserActivity, error) {
	var activities []models.UserActivity
	err := s.DB.Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").
		Find(&activities).Error
	return activities, err
}

// ListActivitiesSince 返回日期不早于 since 的活动，日期最新的在前，最多 limit 条（<=0 表示不限）。
func (s *Store) ListActivitiesSince(userID uint, since time.Time, limit int) ([]models.UserActivity, error) {
	var activities []models.UserActivity
	q := s.DB.Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&activities).Error
	return activities, err
}
