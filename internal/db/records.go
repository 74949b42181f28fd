package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stresslens/internal/health"
	"stresslens/internal/models"
)

const scanColumns = `id, user_id, scanned_at, emotion, emotion_confidence, jaw_clench_score, mouth_open,
eyebrow_raise, posture_quality, slouch_score, head_tilt_angle, shoulder_alignment_diff,
spine_curve_ratio, pose_confidence, overall_stress, image_url, updated_at`

const habitColumns = `id, user_id, recorded_at, age, sleep_hours, work_hours, screen_time, water_intake,
exercise, caffeine_intake, meals_per_day, social_interaction, updated_at`

const insertScan = `INSERT INTO stress_scans (id, user_id, scanned_at, emotion, emotion_confidence,
jaw_clench_score, mouth_open, eyebrow_raise, posture_quality, slouch_score, head_tilt_angle,
shoulder_alignment_diff, spine_curve_ratio, pose_confidence, overall_stress, image_url, updated_at)
VALUES (:id, :user_id, :scanned_at, :emotion, :emotion_confidence, :jaw_clench_score, :mouth_open,
:eyebrow_raise, :posture_quality, :slouch_score, :head_tilt_angle, :shoulder_alignment_diff,
:spine_curve_ratio, :pose_confidence, :overall_stress, :image_url, :updated_at)`

const insertHabit = `INSERT INTO habits (id, user_id, recorded_at, age, sleep_hours, work_hours,
screen_time, water_intake, exercise, caffeine_intake, meals_per_day, social_interaction, updated_at)
VALUES (:id, :user_id, :recorded_at, :age, :sleep_hours, :work_hours, :screen_time, :water_intake,
:exercise, :caffeine_intake, :meals_per_day, :social_interaction, :updated_at)`

// RecordStore persists scans and habits and hands them back as untyped rows
// for the normalizer.
type RecordStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRecordStore(db *sqlx.DB) *RecordStore {
	return &RecordStore{db: db, now: time.Now}
}

// FetchScans returns every scan of the user in insertion order.
func (s *RecordStore) FetchScans(ctx context.Context, userID string) ([]health.RawRecord, error) {
	q := `SELECT ` + scanColumns + ` FROM stress_scans WHERE user_id = ? ORDER BY seq`
	return s.rows(ctx, q, userID)
}

// FetchHabits returns every habit entry of the user in insertion order.
func (s *RecordStore) FetchHabits(ctx context.Context, userID string) ([]health.RawRecord, error) {
	q := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ? ORDER BY seq`
	return s.rows(ctx, q, userID)
}

// RecentScans returns up to limit scans, newest first.
func (s *RecordStore) RecentScans(ctx context.Context, userID string, limit int) ([]health.RawRecord, error) {
	q := `SELECT ` + scanColumns + ` FROM stress_scans WHERE user_id = ? ORDER BY scanned_at DESC, seq DESC LIMIT ?`
	return s.rows(ctx, q, userID, limit)
}

// RecentHabits returns up to limit habit entries, newest first.
func (s *RecordStore) RecentHabits(ctx context.Context, userID string, limit int) ([]health.RawRecord, error) {
	q := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ? ORDER BY recorded_at DESC, seq DESC LIMIT ?`
	return s.rows(ctx, q, userID, limit)
}

func (s *RecordStore) rows(ctx context.Context, query string, args ...any) ([]health.RawRecord, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []health.RawRecord{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, health.RawRecord(row))
	}
	return out, rows.Err()
}

// InsertScan stores a normalized scan, assigning an ID when it has none.
func (s *RecordStore) InsertScan(ctx context.Context, scan *models.ScanRecord) error {
	s.prepareScan(scan)
	_, err := s.db.NamedExecContext(ctx, insertScan, scan)
	return err
}

// InsertHabit stores a normalized habit entry, assigning an ID when it has none.
func (s *RecordStore) InsertHabit(ctx context.Context, habit *models.HabitRecord) error {
	s.prepareHabit(habit)
	_, err := s.db.NamedExecContext(ctx, insertHabit, habit)
	return err
}

// InsertBatch stores scans and habits in one transaction. Nothing is written
// when any row fails.
func (s *RecordStore) InsertBatch(ctx context.Context, scans []models.ScanRecord, habits []models.HabitRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range scans {
		s.prepareScan(&scans[i])
		if _, err := tx.NamedExecContext(ctx, insertScan, &scans[i]); err != nil {
			return fmt.Errorf("scan %d: %w", i, err)
		}
	}
	for i := range habits {
		s.prepareHabit(&habits[i])
		if _, err := tx.NamedExecContext(ctx, insertHabit, &habits[i]); err != nil {
			return fmt.Errorf("habit %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *RecordStore) prepareScan(scan *models.ScanRecord) {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	scan.ScannedAt = scan.ScannedAt.UTC()
	scan.UpdatedAt = s.now().UTC()
}

func (s *RecordStore) prepareHabit(habit *models.HabitRecord) {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	habit.RecordedAt = habit.RecordedAt.UTC()
	habit.UpdatedAt = s.now().UTC()
}

type Overview struct {
	TotalUsers          int `json:"total_users" db:"total_users"`
	TotalScans          int `json:"total_scans" db:"total_scans"`
	TotalHabits         int `json:"total_habits" db:"total_habits"`
	ActiveUsersThisWeek int `json:"active_users_this_week" db:"active_users"`
}

// Overview counts users and records; active users are those with a scan or
// habit entry at or after since.
func (s *RecordStore) Overview(ctx context.Context, since time.Time) (Overview, error) {
	var out Overview
	since = since.UTC()
	q := `SELECT
    (SELECT COUNT(*) FROM users) AS total_users,
    (SELECT COUNT(*) FROM stress_scans) AS total_scans,
    (SELECT COUNT(*) FROM habits) AS total_habits,
    (SELECT COUNT(*) FROM (
        SELECT user_id FROM stress_scans WHERE scanned_at >= ?
        UNION
        SELECT user_id FROM habits WHERE recorded_at >= ?
    ) AS active) AS active_users`
	if err := s.db.GetContext(ctx, &out, s.db.Rebind(q), since, since); err != nil {
		return Overview{}, err
	}
	return out, nil
}
