package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stresslens/internal/health"
	"stresslens/internal/models"
)

type fakeSource struct {
	scans  map[string][]health.RawRecord
	habits map[string][]health.RawRecord
	calls  int
	err    error
}

func (f *fakeSource) FetchScans(_ context.Context, userID string) ([]health.RawRecord, error) {
	f.calls++
	return f.scans[userID], f.err
}

func (f *fakeSource) FetchHabits(_ context.Context, userID string) ([]health.RawRecord, error) {
	return f.habits[userID], f.err
}

type memCache struct {
	mu    sync.Mutex
	items map[string]health.RiskPrediction
}

func newMemCache() *memCache { return &memCache{items: map[string]health.RiskPrediction{}} }

func (c *memCache) Get(_ context.Context, userID string) (health.RiskPrediction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[userID]
	return p, ok, nil
}

func (c *memCache) Set(_ context.Context, userID string, p health.RiskPrediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[userID] = p
	return nil
}

func (c *memCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
	return nil
}

var testNow = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func testEngine() *health.Engine {
	return health.NewEngine(health.WithClock(func() time.Time { return testNow }))
}

func highStressSource() *fakeSource {
	return &fakeSource{
		scans: map[string][]health.RawRecord{
			"u1": {
				{"user_id": "u1", "scanned_at": "2025-03-09T10:00:00Z", "jaw_clench_score": 0.1, "overall_stress": 20},
				{"user_id": "u1", "scanned_at": "2025-03-10T10:00:00Z", "jaw_clench_score": 0.8, "slouch_score": 0.6, "posture_quality": "poor", "overall_stress": 80},
			},
		},
		habits: map[string][]health.RawRecord{
			"u1": {{"user_id": "u1", "recorded_at": "2025-03-10", "sleep_hours": 5, "exercise": false}},
		},
	}
}

func TestPredictUsesCache(t *testing.T) {
	src := highStressSource()
	c := newMemCache()
	svc := NewPredictionService(src, testEngine(), c, nil)
	ctx := context.Background()

	first, err := svc.Predict(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, health.RiskHigh, first.RiskLevel)
	assert.Equal(t, health.BaselineModelVersion, first.ModelVersion)
	assert.Equal(t, 1, src.calls)

	second, err := svc.Predict(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	svc.Invalidate(ctx, "u1")
	_, err = svc.Predict(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestPredictErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewPredictionService(&fakeSource{}, testEngine(), nil, nil)
	_, err := svc.Predict(ctx, "nobody")
	assert.ErrorIs(t, err, health.ErrInsufficientData)

	boom := errors.New("db down")
	svc = NewPredictionService(&fakeSource{err: boom}, testEngine(), nil, nil)
	_, err = svc.Predict(ctx, "u1")
	assert.ErrorIs(t, err, boom)
}

func TestTrendAndSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := NewPredictionService(highStressSource(), testEngine(), nil, nil)

	points, err := svc.Trend(ctx, "u1", 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-03-10", points[0].Date)
	assert.Equal(t, 80.0, *points[0].AvgStress)

	_, err = svc.Trend(ctx, "u1", 0)
	assert.ErrorIs(t, err, health.ErrInvalidArgument)

	snap, ok, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 80.0, *snap.Scan.OverallStress)
	require.NotNil(t, snap.Habit)

	_, ok, err = svc.Snapshot(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc := NewPredictionService(highStressSource(), testEngine(), nil, nil)

	d, err := svc.Dashboard(ctx, "u1", 7)
	require.NoError(t, err)
	require.NotNil(t, d.Snapshot)
	require.NotNil(t, d.Prediction)
	assert.Equal(t, health.RiskHigh, d.Prediction.RiskLevel)
	assert.Len(t, d.Trend, 2)
	assert.Equal(t, health.DirectionIncreasing, d.Direction)

	empty, err := svc.Dashboard(ctx, "nobody", 7)
	require.NoError(t, err)
	assert.Nil(t, empty.Snapshot)
	assert.Nil(t, empty.Prediction)
	assert.Empty(t, empty.Trend)
	assert.Equal(t, health.DirectionStable, empty.Direction)
}

type fakeStore struct {
	scans  []models.ScanRecord
	habits []models.HabitRecord
}

func (f *fakeStore) InsertScan(_ context.Context, s *models.ScanRecord) error {
	f.scans = append(f.scans, *s)
	return nil
}

func (f *fakeStore) InsertHabit(_ context.Context, h *models.HabitRecord) error {
	f.habits = append(f.habits, *h)
	return nil
}

func (f *fakeStore) InsertBatch(_ context.Context, scans []models.ScanRecord, habits []models.HabitRecord) error {
	f.scans = append(f.scans, scans...)
	f.habits = append(f.habits, habits...)
	return nil
}

func (f *fakeStore) RecentScans(context.Context, string, int) ([]health.RawRecord, error) {
	return []health.RawRecord{{"user_id": "u1", "scanned_at": "2025-03-10T10:00:00Z", "overall_stress": 75.0}}, nil
}

func (f *fakeStore) RecentHabits(context.Context, string, int) ([]health.RawRecord, error) {
	return nil, nil
}

func TestRecordServiceIngest(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newMemCache()
	_ = c.Set(ctx, "u1", health.RiskPrediction{StressLevel: 1})
	preds := NewPredictionService(&fakeSource{}, testEngine(), c, nil)
	svc := NewRecordService(store, health.NewNormalizer(health.Scale10), preds, nil)

	raw := health.RawRecord{"user_id": "someone-else", "scanned_at": "2025-03-10T10:00:00Z", "overall_stress": "7.5"}
	scan, err := svc.AddScan(ctx, "u1", raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", scan.UserID)
	assert.Equal(t, 75.0, *scan.OverallStress)
	assert.Equal(t, "someone-else", raw["user_id"], "caller map must not change")

	_, ok, _ := c.Get(ctx, "u1")
	assert.False(t, ok, "new records invalidate the cached prediction")

	// stored rows are canonical and must not be rescaled on the way out
	recent, err := svc.RecentScans(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 75.0, *recent[0].OverallStress)

	_, err = svc.AddHabit(ctx, "u1", health.RawRecord{"recorded_at": "2025-03-10", "social_interaction": "lots"})
	assert.ErrorIs(t, err, health.ErrValidation)
	assert.Empty(t, store.habits)
}

func TestRecordServiceSync(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	svc := NewRecordService(store, health.NewNormalizer(health.Scale100), nil, nil)

	_, err := svc.Sync(ctx, "u1", nil, nil)
	assert.ErrorIs(t, err, health.ErrInvalidArgument)

	_, err = svc.Sync(ctx, "u1",
		[]health.RawRecord{{"scanned_at": "2025-03-10T10:00:00Z"}},
		[]health.RawRecord{{"recorded_at": "2025-03-10"}, {"recorded_at": "2025-03-10", "exercise": "sometimes"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "habits[1]")
	assert.ErrorIs(t, err, health.ErrValidation)
	assert.Empty(t, store.scans, "nothing is written when validation fails")

	res, err := svc.Sync(ctx, "u1",
		[]health.RawRecord{{"scanned_at": "2025-03-10T10:00:00Z"}, {"scanned_at": "2025-03-10T11:00:00Z"}},
		[]health.RawRecord{{"recorded_at": "2025-03-10"}},
	)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Scans: 2, Habits: 1}, res)
	assert.Len(t, store.scans, 2)
}

type admins map[string]bool

func (a admins) IsAdmin(_ context.Context, id string) (bool, error) { return a[id], nil }

func TestAccess(t *testing.T) {
	ctx := context.Background()
	a := NewAccess(admins{"root": true})

	assert.NoError(t, a.Authorize(ctx, "u1", "u1"))
	assert.NoError(t, a.Authorize(ctx, "u1", "root"))
	assert.ErrorIs(t, a.Authorize(ctx, "u1", "u2"), ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, "u1", ""), ErrForbidden)
}

func TestUserVault(t *testing.T) {
	plain, err := NewUserVault(nil, nil)
	require.NoError(t, err)
	assert.False(t, plain.Sealing())
	u := models.User{Email: "  Me@Example.com "}
	require.NoError(t, plain.SealUser(&u))
	assert.Equal(t, "me@example.com", u.Email)
	assert.Equal(t, "me@example.com", u.EmailBlindIndex)

	vault, err := NewUserVault(bytes.Repeat([]byte{3}, 32), bytes.Repeat([]byte{4}, 32))
	require.NoError(t, err)
	assert.True(t, vault.Sealing())
	u = models.User{Email: "Me@Example.com"}
	require.NoError(t, vault.SealUser(&u))
	assert.NotContains(t, u.Email, "example")
	assert.Equal(t, vault.EmailIndex("me@example.com"), u.EmailBlindIndex)
	require.NoError(t, vault.OpenUser(&u))
	assert.Equal(t, "me@example.com", u.Email)

	_, err = NewUserVault(make([]byte, 32), nil)
	assert.Error(t, err)
}
