package store

import (
	"time"

	"ecofix/backend/go/internal/models"
)

// --- User Management ---

// CreateUser 在数据库中创建一个新用户。
func (s *Store) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

// GetUserByUsername 通过用户名查找用户。
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByID 通过 ID 查找用户。
func (s *Store) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserExists 报告用户名或邮箱是否已被占用。
func (s *Store) UserExists(username, email string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// TouchLastLogin 记录用户最近一次登录时间。
func (s *Store) TouchLastLogin(userID uint, at time.Time) error {
	return s.DB.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}
