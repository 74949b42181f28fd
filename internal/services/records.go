package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stresslens/internal/health"
	"stresslens/internal/models"
)

// MaxSyncBatch caps how many records one offline upload may carry.
const MaxSyncBatch = 1000

type RecordStore interface {
	InsertScan(ctx context.Context, scan *models.ScanRecord) error
	InsertHabit(ctx context.Context, habit *models.HabitRecord) error
	InsertBatch(ctx context.Context, scans []models.ScanRecord, habits []models.HabitRecord) error
	RecentScans(ctx context.Context, userID string, limit int) ([]health.RawRecord, error)
	RecentHabits(ctx context.Context, userID string, limit int) ([]health.RawRecord, error)
}

// RecordService validates incoming scans and habits and stores them. Input
// stress values are converted with the ingest normalizer; stored rows are
// already canonical and are read back on the 0-100 scale.
type RecordService struct {
	store       RecordStore
	ingest      *health.Normalizer
	stored      *health.Normalizer
	predictions *PredictionService
	log         *zap.Logger
}

func NewRecordService(store RecordStore, ingest *health.Normalizer, predictions *PredictionService, log *zap.Logger) *RecordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordService{
		store:       store,
		ingest:      ingest,
		stored:      health.NewNormalizer(health.Scale100),
		predictions: predictions,
		log:         log.With(zap.String("service", "RecordService")),
	}
}

// AddScan stores one raw scan on behalf of userID.
func (s *RecordService) AddScan(ctx context.Context, userID string, raw health.RawRecord) (models.ScanRecord, error) {
	scan, err := s.ingest.NormalizeScan(withUser(raw, userID))
	if err != nil {
		return models.ScanRecord{}, err
	}
	if err := s.store.InsertScan(ctx, &scan); err != nil {
		return models.ScanRecord{}, err
	}
	s.changed(ctx, userID)
	return scan, nil
}

// AddHabit stores one raw habit entry on behalf of userID.
func (s *RecordService) AddHabit(ctx context.Context, userID string, raw health.RawRecord) (models.HabitRecord, error) {
	habit, err := s.ingest.NormalizeHabit(withUser(raw, userID))
	if err != nil {
		return models.HabitRecord{}, err
	}
	if err := s.store.InsertHabit(ctx, &habit); err != nil {
		return models.HabitRecord{}, err
	}
	s.changed(ctx, userID)
	return habit, nil
}

type SyncResult struct {
	Scans  int `json:"scans"`
	Habits int `json:"habits"`
}

// Sync stores records captured offline. Every record is validated before
// anything is written and the batch is inserted in one transaction.
func (s *RecordService) Sync(ctx context.Context, userID string, rawScans, rawHabits []health.RawRecord) (SyncResult, error) {
	if len(rawScans)+len(rawHabits) == 0 {
		return SyncResult{}, fmt.Errorf("%w: nothing to sync", health.ErrInvalidArgument)
	}
	if len(rawScans)+len(rawHabits) > MaxSyncBatch {
		return SyncResult{}, fmt.Errorf("%w: batch exceeds %d records", health.ErrInvalidArgument, MaxSyncBatch)
	}

	scans := make([]models.ScanRecord, 0, len(rawScans))
	for i, raw := range rawScans {
		scan, err := s.ingest.NormalizeScan(withUser(raw, userID))
		if err != nil {
			return SyncResult{}, fmt.Errorf("scans[%d]: %w", i, err)
		}
		scans = append(scans, scan)
	}
	habits := make([]models.HabitRecord, 0, len(rawHabits))
	for i, raw := range rawHabits {
		habit, err := s.ingest.NormalizeHabit(withUser(raw, userID))
		if err != nil {
			return SyncResult{}, fmt.Errorf("habits[%d]: %w", i, err)
		}
		habits = append(habits, habit)
	}

	if err := s.store.InsertBatch(ctx, scans, habits); err != nil {
		return SyncResult{}, err
	}
	s.changed(ctx, userID)
	s.log.Info("offline batch synced",
		zap.String("user_id", userID),
		zap.Int("scans", len(scans)),
		zap.Int("habits", len(habits)),
	)
	return SyncResult{Scans: len(scans), Habits: len(habits)}, nil
}

// RecentScans lists up to limit scans, newest first.
func (s *RecordService) RecentScans(ctx context.Context, userID string, limit int) ([]models.ScanRecord, error) {
	rows, err := s.store.RecentScans(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.stored.NormalizeScans(rows)
}

// RecentHabits lists up to limit habit entries, newest first.
func (s *RecordService) RecentHabits(ctx context.Context, userID string, limit int) ([]models.HabitRecord, error) {
	rows, err := s.store.RecentHabits(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.stored.NormalizeHabits(rows)
}

func (s *RecordService) changed(ctx context.Context, userID string) {
	if s.predictions != nil {
		s.predictions.Invalidate(ctx, userID)
	}
}

// withUser pins the record to userID without mutating the caller's map.
func withUser(raw health.RawRecord, userID string) health.RawRecord {
	out := make(health.RawRecord, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	out["user_id"] = userID
	return out
}
