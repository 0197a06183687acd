package scoring

import (
	"context"
	"sort"
	"time"

	"ecofix/backend/go/internal/models"
)

const (
	DefaultChartWindowDays = 30
	DefaultChartMaxPoints  = 50
)

// ChartBuilder 把最近的活动记录整理成 (日期, 能耗, 评分) 时间序列。
// 每个点单独调用一次 Scorer，不做批处理；点数上限保证调用次数有界。
type ChartBuilder struct {
	scorer     Scorer
	windowDays int
	maxPoints  int
	now        func() time.Time
}

// ChartOption 配置 ChartBuilder。
type ChartOption func(*ChartBuilder)

// WithWindow 设置时间窗口（天）。
func WithWindow(days int) ChartOption {
	return func(b *ChartBuilder) {
		if days > 0 {
			b.windowDays = days
		}
	}
}

// WithMaxPoints 设置点数上限。
func WithMaxPoints(n int) ChartOption {
	return func(b *ChartBuilder) {
		if n > 0 {
			b.maxPoints = n
		}
	}
}

// WithClock 替换时钟，用于测试。
func WithClock(now func() time.Time) ChartOption {
	return func(b *ChartBuilder) {
		b.now = now
	}
}

// NewChartBuilder 创建 ChartBuilder，默认窗口 30 天、最多 50 个点。
func NewChartBuilder(scorer Scorer, opts ...ChartOption) *ChartBuilder {
	b := &ChartBuilder{
		scorer:     scorer,
		windowDays: DefaultChartWindowDays,
		maxPoints:  DefaultChartMaxPoints,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Since 返回窗口内最早的日期（含）。
func (b *ChartBuilder) Since() time.Time {
	return civilDate(b.now()).AddDate(0, 0, -b.windowDays)
}

// Recent 过滤出窗口内的记录，按日期降序排列并截断到点数上限。
func (b *ChartBuilder) Recent(records []models.ActivityRecord) []models.ActivityRecord {
	since := b.Since()
	recent := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if !civilDate(r.Date).Before(since) {
			recent = append(recent, r)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return civilDate(recent[i].Date).After(civilDate(recent[j].Date))
	})
	if len(recent) > b.maxPoints {
		recent = recent[:b.maxPoints]
	}
	return recent
}

// Build 为窗口内的每条记录单独评分，评分缺失时记为 0。
// 任一次评分失败都会中止并返回错误。没有符合条件的记录时返回空切片。
func (b *ChartBuilder) Build(ctx context.Context, records []models.ActivityRecord) ([]models.ChartPoint, error) {
	recent := b.Recent(records)
	points := make([]models.ChartPoint, 0, len(recent))
	for _, r := range recent {
		report, err := b.scorer.Score(ctx, []models.ActivityRecord{r})
		if err != nil {
			return nil, err
		}
		points = append(points, models.ChartPoint{
			Date:        r.Date.Format(models.DateLayout),
			EnergyUsage: r.EnergyUsage,
			Score:       report.Parsed.ScoreOrZero(),
		})
	}
	return points, nil
}

// civilDate 丢弃时刻与时区，只保留日历日期。
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
