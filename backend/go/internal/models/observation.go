package models

import "time"

// ObservationType 是环境观测的类别。
type ObservationType string

const (
	ObservationAirQuality     ObservationType = "air_quality"
	ObservationWaterQuality   ObservationType = "water_quality"
	ObservationNoisePollution ObservationType = "noise_pollution"
	ObservationOther          ObservationType = "other"
)

// ObservationTypes 按展示顺序列出所有合法的观测类别。
var ObservationTypes = []ObservationType{
	ObservationAirQuality,
	ObservationWaterQuality,
	ObservationNoisePollution,
	ObservationOther,
}

// Valid 报告 t 是否是已知的观测类别。
func (t ObservationType) Valid() bool {
	for _, known := range ObservationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EnvironmentalObservation 是用户提交的带地理位置的环境观测报告。
type EnvironmentalObservation struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	ObservationType ObservationType `gorm:"type:varchar(50);index;not null" json:"observationType"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Location        string          `gorm:"size:255" json:"location"`
	Latitude        float64         `gorm:"not null" json:"latitude"`
	Longitude       float64         `gorm:"not null" json:"longitude"`
	PhotoKey        string          `gorm:"size:255" json:"photoKey,omitempty"` // 对象存储中的照片键，可为空
	Timestamp       time.Time       `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (EnvironmentalObservation) TableName() string {
	return "environmental_observations"
}

// MapMarker 是地图视图所需的最小观测数据。
type MapMarker struct {
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	ObservationType ObservationType `json:"observation_type"`
}
