package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stresslens/internal/cache"
	"stresslens/internal/db"
	"stresslens/internal/health"
	"stresslens/internal/services"
)

type testServer struct {
	t    *testing.T
	h    http.Handler
	conn *sqlx.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(conn))

	users := db.NewUserStore(conn)
	records := db.NewRecordStore(conn)
	vault, err := services.NewUserVault(bytes.Repeat([]byte{7}, 32), bytes.Repeat([]byte{8}, 32))
	require.NoError(t, err)
	engine := health.NewEngine()
	predictions := services.NewPredictionService(records, engine, cache.Noop{}, nil)

	h := NewRouter(RouterDeps{
		JWTSecret:   []byte("router-test"),
		Users:       users,
		Records:     records,
		Vault:       vault,
		Access:      services.NewAccess(users),
		Predictions: predictions,
		Ingest:      services.NewRecordService(records, health.NewNormalizer(health.Scale100), predictions, nil),
		TrendDays:   7,
	})
	return &testServer{t: t, h: h, conn: conn}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (s *testServer) signup(email string) (token, id string) {
	s.t.Helper()
	rec, out := s.do(http.MethodPost, "/api/auth/signup", "", map[string]any{"email": email, "password": "hunter22"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := out["user"].(map[string]any)
	return out["token"].(string), user["id"].(string)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("Alice@Example.com")

	rec, _ := s.do(http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "alice@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ALICE@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["token"])

	rec, out = s.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", out["email"])

	var stored string
	require.NoError(t, s.conn.Get(&stored, `SELECT email FROM users LIMIT 1`))
	assert.NotContains(t, stored, "example.com", "email is sealed at rest")

	rec, _ = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredictFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("a@example.com")

	rec, out := s.do(http.MethodPost, "/api/predict", token, map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])

	scannedAt := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	rec, _ = s.do(http.MethodPost, "/api/scans", token, map[string]any{
		"scanned_at":       scannedAt,
		"jaw_clench_score": 0.8,
		"slouch_score":     "0.6",
		"posture_quality":  "poor",
		"eyebrow_raise":    "true",
		"overall_stress":   76,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, out = s.do(http.MethodPost, "/api/predict", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, health.BaselineModelVersion, out["model_version"])
	pred := out["prediction"].(map[string]any)
	assert.InDelta(t, 76.0, pred["stress_level"], 1e-9)
	assert.Equal(t, "High", pred["risk_level"])
	risks := pred["health_risks"].(map[string]any)
	assert.Len(t, risks, 4)

	rec, out = s.do(http.MethodGet, "/api/scans?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	scans := out["scans"].([]any)
	require.Len(t, scans, 1)
	assert.Equal(t, 1.0, scans[0].(map[string]any)["eyebrow_raise"])

	rec, out = s.do(http.MethodPost, "/api/scans", token, map[string]any{"scanned_at": scannedAt, "posture_quality": "slumped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "posture_quality")

	rec, _ = s.do(http.MethodGet, "/api/scans?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrendSnapshotDashboard(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("t@example.com")

	now := time.Now().UTC()
	rec, out := s.do(http.MethodPost, "/api/sync", token, map[string]any{
		"scans": []map[string]any{
			{"scanned_at": now.Add(-time.Second).Format(time.RFC3339), "overall_stress": 40},
			{"scanned_at": now.Add(-2 * time.Second).Format(time.RFC3339), "overall_stress": 60},
		},
		"habits": []map[string]any{
			{"recorded_at": now.Add(-time.Hour).Format(time.RFC3339), "sleep_hours": 5, "exercise": "false", "social_interaction": "Low"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	synced := out["synced"].(map[string]any)
	assert.Equal(t, 2.0, synced["scans"])

	rec, out = s.do(http.MethodPost, "/api/sync", token, map[string]any{
		"habits": []map[string]any{{"recorded_at": "2025-03-10", "meals_per_day": 2.5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "habits[0]")

	rec, _ = s.do(http.MethodGet, "/api/trend?days=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var points []health.TrendPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.NotEmpty(t, points)
	total := 0
	for _, p := range points {
		total += p.ScanCount
	}
	assert.Equal(t, 2, total)

	for _, days := range []string{"0", "366", "week"} {
		rec, _ = s.do(http.MethodGet, "/api/trend?days="+days, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, days)
	}

	rec, out = s.do(http.MethodGet, "/api/snapshot", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	scan := out["scan"].(map[string]any)
	assert.Equal(t, 40.0, scan["overall_stress"])
	assert.NotNil(t, out["habit"])

	rec, out = s.do(http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pred := out["prediction"].(map[string]any)
	assert.Equal(t, "Medium", pred["risk_level"])
	assert.Contains(t, pred["symptoms"], "Sleep deprivation")
	assert.Equal(t, "stable", out["direction"])
}

func TestCrossUserAccess(t *testing.T) {
	s := newTestServer(t)
	alice, aliceID := s.signup("alice@example.com")
	bob, bobID := s.signup("bob@example.com")

	rec, _ := s.do(http.MethodGet, "/api/trend?user_id="+aliceID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodPost, "/api/predict", bob, map[string]any{"user_id": aliceID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/admin/overview", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := s.conn.Exec(s.conn.Rebind(`UPDATE users SET is_admin = ? WHERE id = ?`), true, bobID)
	require.NoError(t, err)

	rec, _ = s.do(http.MethodGet, "/api/trend?user_id="+aliceID, bob, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, out := s.do(http.MethodGet, "/api/admin/overview", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, out["total_users"])

	rec, _ = s.do(http.MethodGet, "/api/trend?user_id="+bobID, alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
