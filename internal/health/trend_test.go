package health

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stresslens/internal/models"
)

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func stressScan(user string, at time.Time, stress float64) models.ScanRecord {
	s := stress
	return models.ScanRecord{UserID: user, ScannedAt: at, OverallStress: &s}
}

func TestTrendWindowAndBuckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	agg := NewTrendAggregator(fixedClock(now), time.UTC)

	// ten days of history, with day -3 holding two readings
	var scans []models.ScanRecord
	for d := 0; d < 10; d++ {
		if d == 3 {
			continue
		}
		scans = append(scans, stressScan("u1", now.AddDate(0, 0, -d).Add(-time.Hour), 30))
	}
	scans = append(scans,
		stressScan("u1", time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC), 50),
		stressScan("u1", time.Date(2025, 3, 7, 20, 0, 0, 0, time.UTC), 70),
	)

	points, err := agg.Trend("u1", scans, 7)
	require.NoError(t, err)

	require.Len(t, points, 8) // today and the seven days before it
	assert.Equal(t, "2025-03-10", points[0].Date)
	assert.Equal(t, "2025-03-03", points[len(points)-1].Date)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i-1].Date, points[i].Date)
	}

	var day3 *TrendPoint
	for i := range points {
		if points[i].Date == "2025-03-07" {
			day3 = &points[i]
		}
	}
	require.NotNil(t, day3)
	assert.Equal(t, 2, day3.ScanCount)
	require.NotNil(t, day3.AvgStress)
	assert.InDelta(t, 60.0, *day3.AvgStress, 1e-9)
}

func TestTrendEdgeCases(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	agg := NewTrendAggregator(fixedClock(now), time.UTC)

	t.Run("empty input", func(t *testing.T) {
		points, err := agg.Trend("u1", nil, 7)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("non positive window", func(t *testing.T) {
		_, err := agg.Trend("u1", nil, 0)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = agg.Trend("u1", nil, -3)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("empty days are omitted", func(t *testing.T) {
		scans := []models.ScanRecord{
			stressScan("u1", now.Add(-time.Hour), 20),
			stressScan("u1", now.AddDate(0, 0, -5), 40),
		}
		points, err := agg.Trend("u1", scans, 7)
		require.NoError(t, err)
		assert.Len(t, points, 2)
	})

	t.Run("future scans and other users are ignored", func(t *testing.T) {
		scans := []models.ScanRecord{
			stressScan("u1", now.Add(time.Hour), 20),
			stressScan("u2", now.Add(-time.Hour), 40),
		}
		points, err := agg.Trend("u1", scans, 7)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("scans without stress still count", func(t *testing.T) {
		scans := []models.ScanRecord{
			{UserID: "u1", ScannedAt: now.Add(-time.Hour)},
		}
		points, err := agg.Trend("u1", scans, 7)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 1, points[0].ScanCount)
		assert.Nil(t, points[0].AvgStress)
	})
}

func TestTrendUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)
	agg := NewTrendAggregator(fixedClock(now), loc)

	// 02:00 UTC on the 10th is still the 9th at UTC-5
	scans := []models.ScanRecord{stressScan("u1", time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC), 10)}
	points, err := agg.Trend("u1", scans, 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2025-03-09", points[0].Date)
}

func TestTrendIsOrderIndependentWithinADay(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	agg := NewTrendAggregator(fixedClock(now), time.UTC)
	rng := rand.New(rand.NewSource(42))

	var scans []models.ScanRecord
	for i := 0; i < 25; i++ {
		at := time.Date(2025, 3, 10, rng.Intn(23), rng.Intn(60), 0, 0, time.UTC)
		scans = append(scans, stressScan("u1", at, rng.Float64()*100))
	}

	want, err := agg.Trend("u1", scans, 3)
	require.NoError(t, err)
	require.Len(t, want, 1)

	for i := 0; i < 20; i++ {
		shuffled := append([]models.ScanRecord(nil), scans...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := agg.Trend("u1", shuffled, 3)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, want[0].ScanCount, got[0].ScanCount)
		assert.Equal(t, *want[0].AvgStress, *got[0].AvgStress)
	}
}

func TestTrendLengthBoundedByDistinctDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	agg := NewTrendAggregator(fixedClock(now), time.UTC)
	rng := rand.New(rand.NewSource(3))

	var scans []models.ScanRecord
	for i := 0; i < 40; i++ {
		scans = append(scans, stressScan("u1", now.Add(-time.Duration(rng.Intn(30*24))*time.Hour), 50))
	}
	for _, window := range []int{1, 3, 7, 14, 30} {
		days := map[string]bool{}
		start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -window)
		for _, s := range scans {
			if !s.ScannedAt.Before(start) && !s.ScannedAt.After(now) {
				days[s.ScannedAt.Format(DateLayout)] = true
			}
		}
		points, err := agg.Trend("u1", scans, window)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(points), len(days))
	}
}

func TestTrendDirection(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	t.Run("too few points", func(t *testing.T) {
		assert.Equal(t, DirectionStable, TrendDirection(nil))
		assert.Equal(t, DirectionStable, TrendDirection([]TrendPoint{{AvgStress: v(50)}}))
	})

	t.Run("newest first input", func(t *testing.T) {
		rising := []TrendPoint{{AvgStress: v(80)}, {AvgStress: v(70)}, {AvgStress: v(30)}, {AvgStress: v(20)}}
		assert.Equal(t, DirectionIncreasing, TrendDirection(rising))

		falling := []TrendPoint{{AvgStress: v(20)}, {AvgStress: v(30)}, {AvgStress: v(70)}, {AvgStress: v(80)}}
		assert.Equal(t, DirectionDecreasing, TrendDirection(falling))
	})

	t.Run("small moves are stable", func(t *testing.T) {
		flat := []TrendPoint{{AvgStress: v(52)}, {AvgStress: nil}, {AvgStress: v(50)}}
		assert.Equal(t, DirectionStable, TrendDirection(flat))
	})
}
