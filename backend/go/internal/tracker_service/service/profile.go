package service

import (
	"errors"

	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/tracker_service/store"
)

// Profile 是当前用户的账户信息和最近一次保存的评分。
type Profile struct {
	User  *models.User                `json:"user"`
	Score *models.SustainabilityScore `json:"score"`
}

// Profile 返回用户资料。尚未计算过评分时 Score 为 nil。
func (s *Service) Profile(userID uint) (*Profile, error) {
	user, err := s.store.GetUserByID(userID)
	if errors.Is(err, store.ErrNotFound) {
		// 令牌有效但账户已不存在
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	score, err := s.store.GetScore(userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return &Profile{User: user, Score: score}, nil
}
