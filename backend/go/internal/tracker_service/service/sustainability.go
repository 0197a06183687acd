package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/scoring"

	"gorm.io/datatypes"
)

// Sustainability 对用户的全部活动评分，并保存最近一次的结果。
// 回复中没有评分时不覆盖已保存的结果。
func (s *Service) Sustainability(ctx context.Context, userID uint) (*scoring.Report, error) {
	activities, err := s.store.ListActivities(userID)
	if err != nil {
		return nil, fmt.Errorf("读取活动记录失败: %w", err)
	}
	report, err := s.scorer.Score(ctx, models.Records(activities))
	if err != nil {
		return nil, err
	}

	if report.Parsed.Score == nil {
		s.log.WithField("user_id", userID).Warn("no score found in model response")
		return report, nil
	}
	if err := s.saveScore(userID, report.Parsed); err != nil {
		s.log.WithError(models.NewErrorInfo(err, "store_error", 0)).WithField("user_id", userID).Error("failed to save sustainability score")
	}
	s.publish(ctx, userID, models.EventScoreComputed, map[string]interface{}{
		"score":      *report.Parsed.Score,
		"activities": len(activities),
	})
	return report, nil
}

func (s *Service) saveScore(userID uint, parsed models.ParsedSustainability) error {
	breakdown, err := json.Marshal(parsed.Breakdown)
	if err != nil {
		return err
	}
	suggestions, err := json.Marshal(parsed.Suggestions)
	if err != nil {
		return err
	}
	return s.store.UpsertScore(&models.SustainabilityScore{
		UserID:      userID,
		Score:       float64(*parsed.Score),
		Breakdown:   datatypes.JSON(breakdown),
		Suggestions: datatypes.JSON(suggestions),
	})
}

// Chart 返回最近活动的评分时间序列。
func (s *Service) Chart(ctx context.Context, userID uint) ([]models.ChartPoint, error) {
	activities, err := s.store.ListActivitiesSince(userID, s.chart.Since(), s.maxPoints)
	if err != nil {
		return nil, fmt.Errorf("读取活动记录失败: %w", err)
	}
	return s.chart.Build(ctx, models.Records(activities))
}

// Simulate 估算用户采取某个绿色行动后的评分，只参考时间窗口内的活动。
func (s *Service) Simulate(ctx context.Context, userID uint, action scoring.GreenAction) (*scoring.Report, error) {
	if !action.Valid() {
		return nil, invalid("action", fmt.Sprintf("unknown green action %q", action))
	}
	activities, err := s.store.ListActivitiesSince(userID, s.chart.Since(), s.maxPoints)
	if err != nil {
		return nil, fmt.Errorf("读取活动记录失败: %w", err)
	}
	return s.simulator.Simulate(ctx, action, models.Records(activities))
}
