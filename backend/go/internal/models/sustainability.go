package models

import (
	"time"

	"gorm.io/datatypes"
)

// FootprintUnit 是碳足迹数值的固定单位。
const FootprintUnit = "kg CO2e"

// ParsedFootprint 是从模型回复中提取的碳足迹数值。
type ParsedFootprint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// BreakdownEntry 是评分明细中的一项。
type BreakdownEntry struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// ParsedSustainability 是从模型回复中提取的可持续性评分结构。
// 每次调用都重新生成，不做缓存。Score 为 nil 表示回复中没有评分。
type ParsedSustainability struct {
	Score       *int             `json:"score"`
	Breakdown   []BreakdownEntry `json:"breakdown"`
	Suggestions []string         `json:"suggestions"`
}

// ScoreOrZero 返回评分，缺失时返回 0。
func (p ParsedSustainability) ScoreOrZero() int {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

// ChartPoint 是前端图表中的一个点。
type ChartPoint struct {
	Date        string  `json:"date"`
	EnergyUsage float64 `json:"energy_usage"`
	Score       int     `json:"score"`
}

// SustainabilityScore 保存每个用户最近一次计算出的评分。
type SustainabilityScore struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"userId"`
	Score       float64        `gorm:"not null;default:0" json:"score"`
	Breakdown   datatypes.JSON `json:"breakdown"`
	Suggestions datatypes.JSON `json:"suggestions"`
	LastUpdated time.Time      `gorm:"autoUpdateTime" json:"lastUpdated"`
}

func (SustainabilityScore) TableName() string {
	return "sustainability_scores"
}
