package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/scoring"
)

// ActivityInput 是记录一天活动所需的字段。Date 为零值时使用当天。
type ActivityInput struct {
	Date           time.Time
	Transportation string
	Diet           string
	EnergyUsage    float64
}

// ActivityResult 是记录活动后的结果。无法得到碳足迹时 Footprint 为 nil，Note 说明原因。
type ActivityResult struct {
	Activity  *models.UserActivity    `json:"activity"`
	Footprint *models.ParsedFootprint `json:"footprint"`
	RawText   string                  `json:"rawText,omitempty"`
	Note      string                  `json:"note,omitempty"`
}

const (
	noteNoFootprint = "could not compute"
	noteModelFailed = "carbon footprint estimation is unavailable right now"
)

// LogActivity 保存一条活动记录，并估算它的碳足迹。
// 估算失败不会撤销已保存的记录。
func (s *Service) LogActivity(ctx context.Context, userID uint, in ActivityInput) (*ActivityResult, error) {
	in.Transportation = strings.TrimSpace(in.Transportation)
	in.Diet = strings.TrimSpace(in.Diet)
	switch {
	case in.Transportation == "":
		return nil, invalid("transportation", "transportation is required")
	case in.Diet == "":
		return nil, invalid("diet", "diet is required")
	case in.EnergyUsage < 0 || math.IsNaN(in.EnergyUsage) || math.IsInf(in.EnergyUsage, 0):
		return nil, invalid("energy_usage", "energy usage must be a non-negative number")
	}

	date := s.today()
	if !in.Date.IsZero() {
		y, m, d := in.Date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	activity := &models.UserActivity{
		UserID:         userID,
		Date:           date,
		Transportation: in.Transportation,
		Diet:           in.Diet,
		EnergyUsage:    in.EnergyUsage,
	}
	if err := s.store.CreateActivity(activity); err != nil {
		return nil, fmt.Errorf("保存活动记录失败: %w", err)
	}

	result := &ActivityResult{Activity: activity}
	raw, footprint, err := s.estimator.CarbonFootprint(ctx, activity.Record())
	var perr *scoring.ParseError
	switch {
	case errors.As(err, &perr):
		result.RawText = raw
		result.Note = noteNoFootprint
		s.log.WithError(models.NewErrorInfo(err, "parse_error", 0)).WithField("user_id", userID).Warn("footprint not found in model response")
	case err != nil:
		result.Note = noteModelFailed
		s.log.WithError(models.NewErrorInfo(err, "model_error", 0)).WithField("user_id", userID).Warn("carbon footprint estimation failed")
	default:
		result.RawText = raw
		result.Footprint = &footprint
	}

	payload := map[string]interface{}{
		"activity_id":  activity.ID,
		"date":         activity.Date.Format(models.DateLayout),
		"energy_usage": activity.EnergyUsage,
	}
	if result.Footprint != nil {
		payload["footprint_kg_co2e"] = result.Footprint.Value
	}
	s.publish(ctx, userID, models.EventActivityLogged, payload)
	return result, nil
}

// ListActivities 返回用户的全部活动，最新的在前。
func (s *Service) ListActivities(userID uint) ([]models.UserActivity, error) {
	return s.store.ListActivities(userID)
}
