// Package health turns raw scan and habit records into per-user snapshots,
// daily stress trends and risk predictions. It performs no I/O and holds no
// mutable state, so an Engine can serve concurrent requests.
package health

import (
	"time"

	"stresslens/internal/models"
)

// Engine wires the normalizer, selector, trend aggregator and scorer into
// single-request operations.
type Engine struct {
	normalizer   *Normalizer
	scorer       Scorer
	modelVersion string
	now          Clock
	loc          *time.Location
	trends       *TrendAggregator
}

type Option func(*Engine)

// WithScorer swaps the scoring strategy and the version tag attached to its output.
func WithScorer(s Scorer, version string) Option {
	return func(e *Engine) {
		e.scorer = s
		e.modelVersion = version
	}
}

func WithClock(now Clock) Option { return func(e *Engine) { e.now = now } }

func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

func WithStressScale(scale StressScale) Option {
	return func(e *Engine) { e.normalizer = NewNormalizer(scale) }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		normalizer:   NewNormalizer(Scale100),
		scorer:       NewWeightedScorer(),
		modelVersion: BaselineModelVersion,
		now:          time.Now,
		loc:          time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.trends = NewTrendAggregator(e.now, e.loc)
	return e
}

func (e *Engine) Normalizer() *Normalizer { return e.normalizer }

func (e *Engine) ModelVersion() string { return e.modelVersion }

// ComputeSnapshot returns the latest records for every user in the input.
func (e *Engine) ComputeSnapshot(scans []models.ScanRecord, habits []models.HabitRecord) map[string]Snapshot {
	return ComputeSnapshots(scans, habits)
}

// Snapshot normalizes raw rows and returns the user's snapshot. ok is false
// when the user has no records of either kind.
func (e *Engine) Snapshot(userID string, rawScans, rawHabits []RawRecord) (Snapshot, bool, error) {
	scans, habits, err := e.normalize(rawScans, rawHabits)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, ok := ComputeSnapshots(scans, habits)[userID]
	return snap, ok, nil
}

// Trend aggregates the user's scans by calendar day over windowDays.
func (e *Engine) Trend(userID string, scans []models.ScanRecord, windowDays int) ([]TrendPoint, error) {
	return e.trends.Trend(userID, scans, windowDays)
}

// TrendRaw validates the window, then normalizes raw scans and aggregates them.
func (e *Engine) TrendRaw(userID string, rawScans []RawRecord, windowDays int) ([]TrendPoint, error) {
	if windowDays <= 0 {
		return e.trends.Trend(userID, nil, windowDays)
	}
	scans, err := e.normalizer.NormalizeScans(rawScans)
	if err != nil {
		return nil, err
	}
	return e.trends.Trend(userID, scans, windowDays)
}

// Predict normalizes the user's raw records, selects the latest of each
// kind and scores them.
func (e *Engine) Predict(userID string, rawScans, rawHabits []RawRecord) (RiskPrediction, error) {
	scans, habits, err := e.normalize(rawScans, rawHabits)
	if err != nil {
		return RiskPrediction{}, err
	}
	return e.PredictRecords(userID, scans, habits)
}

// PredictRecords scores already-typed records.
func (e *Engine) PredictRecords(userID string, scans []models.ScanRecord, habits []models.HabitRecord) (RiskPrediction, error) {
	snap := ComputeSnapshots(scans, habits)[userID]
	snap.UserID = userID
	return e.Score(snap)
}

// Score runs the configured scorer and stamps the model version.
func (e *Engine) Score(snap Snapshot) (RiskPrediction, error) {
	pred, err := e.scorer.Score(snap)
	if err != nil {
		return RiskPrediction{}, err
	}
	pred.ModelVersion = e.modelVersion
	return pred, nil
}

func (e *Engine) normalize(rawScans, rawHabits []RawRecord) ([]models.ScanRecord, []models.HabitRecord, error) {
	scans, err := e.normalizer.NormalizeScans(rawScans)
	if err != nil {
		return nil, nil, err
	}
	habits, err := e.normalizer.NormalizeHabits(rawHabits)
	if err != nil {
		return nil, nil, err
	}
	return scans, habits, nil
}
