package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 在查询的记录不存在时返回。
var ErrNotFound = errors.New("record not found")

// Store 封装了追踪服务的所有数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
