package health

import (
	"time"

	"stresslens/internal/models"
)

// Snapshot is the latest scan and habit entry known for one user.
// Either record may be nil; a nil record means the user has none of that kind.
type Snapshot struct {
	UserID  string              `json:"user_id"`
	Scan    *models.ScanRecord  `json:"scan"`
	Habit   *models.HabitRecord `json:"habit"`
	ScanAt  *time.Time          `json:"scan_at"`
	HabitAt *time.Time          `json:"habit_at"`
}

// Empty reports whether the snapshot holds no records at all.
func (s Snapshot) Empty() bool { return s.Scan == nil && s.Habit == nil }

// SelectLatest keeps, per user, the record with the greatest timestamp.
// Records sharing a timestamp resolve to the one appearing later in the
// input. Users without records get no entry.
func SelectLatest[T any](records []T, key func(T) (string, time.Time)) map[string]T {
	latest := make(map[string]T)
	stamps := make(map[string]time.Time)
	for _, rec := range records {
		user, at := key(rec)
		if best, ok := stamps[user]; ok && at.Before(best) {
			continue
		}
		latest[user] = rec
		stamps[user] = at
	}
	return latest
}

func LatestScans(scans []models.ScanRecord) map[string]models.ScanRecord {
	return SelectLatest(scans, func(s models.ScanRecord) (string, time.Time) { return s.UserID, s.ScannedAt })
}

func LatestHabits(habits []models.HabitRecord) map[string]models.HabitRecord {
	return SelectLatest(habits, func(h models.HabitRecord) (string, time.Time) { return h.UserID, h.RecordedAt })
}

// ComputeSnapshots builds one Snapshot per user present in either input.
func ComputeSnapshots(scans []models.ScanRecord, habits []models.HabitRecord) map[string]Snapshot {
	out := make(map[string]Snapshot)
	for user, scan := range LatestScans(scans) {
		scan := scan
		at := scan.ScannedAt
		snap := out[user]
		snap.UserID = user
		snap.Scan = &scan
		snap.ScanAt = &at
		out[user] = snap
	}
	for user, habit := range LatestHabits(habits) {
		habit := habit
		at := habit.RecordedAt
		snap := out[user]
		snap.UserID = user
		snap.Habit = &habit
		snap.HabitAt = &at
		out[user] = snap
	}
	return out
}
