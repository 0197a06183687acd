package models

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// DateLayout 是活动日期和图表点对外使用的 ISO 日期格式。
const DateLayout = "2006-01-02"

// UserActivity 是用户某一天的活动记录（交通、饮食、能源使用）。
// 一经写入即不再修改。
type UserActivity struct {
	gorm.Model

	UserID         uint      `gorm:"index;not null" json:"userId"`
	Date           time.Time `gorm:"type:date;index;not null" json:"date"`
	Transportation string    `gorm:"size:100;not null" json:"transportation"`
	Diet           string    `gorm:"size:100;not null" json:"diet"`
	EnergyUsage    float64   `gorm:"not null" json:"energyUsage"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

// Record 返回评分逻辑使用的只读视图。
func (a UserActivity) Record() ActivityRecord {
	return ActivityRecord{
		Date:           a.Date,
		Transportation: a.Transportation,
		Diet:           a.Diet,
		EnergyUsage:    a.EnergyUsage,
	}
}

// ActivityRecord 是评分与图表构建所引用的活动数据，评分逻辑从不修改它。
type ActivityRecord struct {
	Date           time.Time `json:"date"`
	Transportation string    `json:"transportation"`
	Diet           string    `json:"diet"`
	EnergyUsage    float64   `json:"energy_usage"`
}

// Summary 生成提示词中每条活动使用的一行摘要。
func (r ActivityRecord) Summary() string {
	return fmt.Sprintf("Transportation: %s, Diet: %s, Energy Usage: %s",
		r.Transportation, r.Diet, formatUsage(r.EnergyUsage))
}

// Records 将持久化的活动转换为评分使用的记录，保持原有顺序。
func Records(activities []UserActivity) []ActivityRecord {
	records := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		records = append(records, a.Record())
	}
	return records
}

// formatUsage 输出最短的定点十进制表示，例如 12 而不是 12.000000，1000000 而不是 1e+06。
func formatUsage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
