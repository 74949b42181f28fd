package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "stresslens/docs"
	"stresslens/internal/db"
	mw "stresslens/internal/middleware"
	"stresslens/internal/services"
)

type RouterDeps struct {
	Log         *zap.Logger
	JWTSecret   []byte
	Users       *db.UserStore
	Records     *db.RecordStore
	Vault       *services.UserVault
	Access      *services.Access
	Predictions *services.PredictionService
	Ingest      *services.RecordService
	TrendDays   int
	Now         func() time.Time
}

// NewRouter mounts every endpoint under /api plus the swagger UI.
func NewRouter(d RouterDeps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(d.Users, d.Vault, d.JWTSecret, d.Log)
	userHandler := NewUserHandler(d.Users, d.Vault, d.Log)
	recordsHandler := NewRecordsHandler(d.Ingest, d.Log)
	predictHandler := NewPredictHandler(d.Predictions, d.Access, d.TrendDays, d.Log)
	dashboardHandler := NewDashboardHandler(d.Predictions, d.Log)
	syncHandler := NewSyncHandler(d.Ingest, d.Log)
	adminHandler := NewAdminHandler(d.Users, d.Records, d.Now, d.Log)
	authMW := mw.NewAuthMiddleware(d.JWTSecret)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "model_version": d.Predictions.ModelVersion()})
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/me", userHandler.GetMe)

			pr.Post("/scans", recordsHandler.AddScan)
			pr.Get("/scans", recordsHandler.ListScans)
			pr.Post("/habits", recordsHandler.AddHabit)
			pr.Get("/habits", recordsHandler.ListHabits)
			pr.Post("/sync", syncHandler.Sync)

			pr.Post("/predict", predictHandler.Predict)
			pr.Get("/trend", predictHandler.Trend)
			pr.Get("/snapshot", predictHandler.Snapshot)
			pr.Get("/dashboard", dashboardHandler.Get)

			pr.Get("/admin/overview", adminHandler.Overview)
		})
	})
	return r
}
