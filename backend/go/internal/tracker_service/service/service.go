package service

import (
	"context"
	"time"

	"ecofix/backend/go/internal/geocoding"
	"ecofix/backend/go/internal/llm"
	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/scoring"
	"ecofix/backend/go/internal/tracker_service/store"
	"ecofix/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// Options 是 Service 的可调参数。
type Options struct {
	JWTSecret       string
	TokenTTL        time.Duration
	PageSize        int
	ChartWindowDays int
	ChartMaxPoints  int
	// Now 为空时使用 time.Now。
	Now func() time.Time
}

// Deps 是 Service 依赖的外部组件。Photos、Events 可以为 nil，
// Revoker 为 nil 时使用进程内实现。
type Deps struct {
	Store    *store.Store
	Model    llm.LLM
	Geocoder geocoding.Geocoder
	Photos   PhotoStore
	Events   EventPublisher
	Revoker  TokenRevoker
	Log      *logger.Logger
}

// Service 封装了追踪服务的业务逻辑。
type Service struct {
	store     *store.Store
	estimator *scoring.Estimator
	scorer    *scoring.Aggregator
	chart     *scoring.ChartBuilder
	simulator *scoring.Simulator
	geocoder  geocoding.Geocoder
	photos    PhotoStore
	events    EventPublisher
	revoker   TokenRevoker
	log       *logger.Logger

	jwtSecret []byte
	tokenTTL  time.Duration
	pageSize  int
	maxPoints int
	now       func() time.Time
}

// NewService 创建一个新的 Service 实例。
func NewService(deps Deps, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.ChartMaxPoints <= 0 {
		opts.ChartMaxPoints = scoring.DefaultChartMaxPoints
	}
	if deps.Revoker == nil {
		deps.Revoker = NewMemoryRevoker()
	}
	if deps.Geocoder == nil {
		deps.Geocoder = geocoding.Unavailable{}
	}
	if deps.Log == nil {
		deps.Log = logger.New("tracker_service", "", "")
	}

	aggregator := scoring.NewAggregator(deps.Model)
	return &Service{
		store:     deps.Store,
		estimator: scoring.NewEstimator(deps.Model),
		scorer:    aggregator,
		chart: scoring.NewChartBuilder(aggregator,
			scoring.WithWindow(opts.ChartWindowDays),
			scoring.WithMaxPoints(opts.ChartMaxPoints),
			scoring.WithClock(opts.Now)),
		simulator: scoring.NewSimulator(deps.Model),
		geocoder:  deps.Geocoder,
		photos:    deps.Photos,
		events:    deps.Events,
		revoker:   deps.Revoker,
		log:       deps.Log,
		jwtSecret: []byte(opts.JWTSecret),
		tokenTTL:  opts.TokenTTL,
		pageSize:  opts.PageSize,
		maxPoints: opts.ChartMaxPoints,
		now:       opts.Now,
	}
}

const publishTimeout = 5 * time.Second

// publish 尽力发送事件，失败只记录日志，不影响请求结果。
func (s *Service) publish(ctx context.Context, userID uint, eventType models.EventType, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithError(models.NewErrorInfo(err, "event_publish", 0)).
			WithField("event_type", eventType).
			Warn("failed to publish event")
	}
}

// today 返回当前的日历日期（UTC 零点）。
func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
