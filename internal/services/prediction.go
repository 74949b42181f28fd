package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"stresslens/internal/cache"
	"stresslens/internal/health"
)

// RecordSource yields a user's stored rows in insertion order.
type RecordSource interface {
	FetchScans(ctx context.Context, userID string) ([]health.RawRecord, error)
	FetchHabits(ctx context.Context, userID string) ([]health.RawRecord, error)
}

// PredictionService fetches a user's records and runs them through the engine.
type PredictionService struct {
	records RecordSource
	engine  *health.Engine
	cache   cache.PredictionCache
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewPredictionService(records RecordSource, engine *health.Engine, c cache.PredictionCache, log *zap.Logger) *PredictionService {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictionService{
		records: records,
		engine:  engine,
		cache:   c,
		log:     log.With(zap.String("service", "PredictionService")),
		tracer:  otel.Tracer("stresslens/services"),
	}
}

func (s *PredictionService) ModelVersion() string { return s.engine.ModelVersion() }

// Predict returns the user's current risk prediction, served from cache when fresh.
func (s *PredictionService) Predict(ctx context.Context, userID string) (pred health.RiskPrediction, err error) {
	ctx, span := s.tracer.Start(ctx, "prediction.predict", trace.WithAttributes(attribute.String("user_id", userID)))
	defer func() { endSpan(span, err) }()

	if cached, ok, cerr := s.cache.Get(ctx, userID); cerr != nil {
		s.log.Warn("prediction cache read failed", zap.String("user_id", userID), zap.Error(cerr))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}

	scans, habits, err := s.fetch(ctx, userID)
	if err != nil {
		return health.RiskPrediction{}, err
	}
	pred, err = s.engine.Predict(userID, scans, habits)
	if err != nil {
		return health.RiskPrediction{}, err
	}

	if cerr := s.cache.Set(ctx, userID, pred); cerr != nil {
		s.log.Warn("prediction cache write failed", zap.String("user_id", userID), zap.Error(cerr))
	}
	s.log.Debug("prediction computed",
		zap.String("user_id", userID),
		zap.Int("scans", len(scans)),
		zap.Int("habits", len(habits)),
		zap.String("risk_level", string(pred.RiskLevel)),
	)
	span.SetAttributes(attribute.String("risk_level", string(pred.RiskLevel)))
	return pred, nil
}

// Trend aggregates the user's scans over the last days calendar days.
func (s *PredictionService) Trend(ctx context.Context, userID string, days int) (points []health.TrendPoint, err error) {
	ctx, span := s.tracer.Start(ctx, "prediction.trend", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int("days", days),
	))
	defer func() { endSpan(span, err) }()

	if days <= 0 {
		return s.engine.TrendRaw(userID, nil, days)
	}
	scans, err := s.records.FetchScans(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.TrendRaw(userID, scans, days)
}

// Snapshot returns the user's latest scan and habit entry. ok is false when
// the user has neither.
func (s *PredictionService) Snapshot(ctx context.Context, userID string) (snap health.Snapshot, ok bool, err error) {
	ctx, span := s.tracer.Start(ctx, "prediction.snapshot", trace.WithAttributes(attribute.String("user_id", userID)))
	defer func() { endSpan(span, err) }()

	scans, habits, err := s.fetch(ctx, userID)
	if err != nil {
		return health.Snapshot{}, false, err
	}
	return s.engine.Snapshot(userID, scans, habits)
}

type Dashboard struct {
	Snapshot     *health.Snapshot       `json:"snapshot"`
	Prediction   *health.RiskPrediction `json:"prediction"`
	Trend        []health.TrendPoint    `json:"trend"`
	Direction    health.Direction       `json:"direction"`
	ModelVersion string                 `json:"model_version"`
}

// Dashboard combines snapshot, prediction and trend from a single fetch. A
// user with no records gets an empty dashboard rather than an error.
func (s *PredictionService) Dashboard(ctx context.Context, userID string, days int) (out Dashboard, err error) {
	ctx, span := s.tracer.Start(ctx, "prediction.dashboard", trace.WithAttributes(attribute.String("user_id", userID)))
	defer func() { endSpan(span, err) }()

	rawScans, rawHabits, err := s.fetch(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	n := s.engine.Normalizer()
	scans, err := n.NormalizeScans(rawScans)
	if err != nil {
		return Dashboard{}, err
	}
	habits, err := n.NormalizeHabits(rawHabits)
	if err != nil {
		return Dashboard{}, err
	}

	out.ModelVersion = s.engine.ModelVersion()
	if snap, ok := s.engine.ComputeSnapshot(scans, habits)[userID]; ok {
		out.Snapshot = &snap
	}

	pred, err := s.engine.PredictRecords(userID, scans, habits)
	switch {
	case err == nil:
		out.Prediction = &pred
	case !errors.Is(err, health.ErrInsufficientData):
		return Dashboard{}, err
	}

	if out.Trend, err = s.engine.Trend(userID, scans, days); err != nil {
		return Dashboard{}, err
	}
	out.Direction = health.TrendDirection(out.Trend)
	return out, nil
}

// Invalidate drops the cached prediction after the user's records change.
func (s *PredictionService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("prediction cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *PredictionService) fetch(ctx context.Context, userID string) ([]health.RawRecord, []health.RawRecord, error) {
	scans, err := s.records.FetchScans(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	habits, err := s.records.FetchHabits(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return scans, habits, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
