// Package api provides the HTTP REST API server for NewsPulse.
//
// It exposes endpoints for company reports, on-demand analysis, pipeline
// refreshes, spoken verdicts, an HTML report view and WebSocket
// notifications.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/pipeline"
	"github.com/seenimoa/newspulse/internal/storage"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// StatusMessage is the greeting returned by the health endpoints.
const StatusMessage = "News Sentiment API is running."

// Refresher runs the pipeline for a single company. *pipeline.Runner
// satisfies it.
type Refresher interface {
	RunCompany(ctx context.Context, company string) (*models.Report, error)
	AddListener(l pipeline.Listener)
}

// Synthesizer turns text into MP3 audio. *speech.Service satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Language() string
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Config *config.Config
	Store  storage.Store
	Runner Refresher
	Speech Synthesizer
	Log    *logrus.Logger
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	store  storage.Store
	runner Refresher
	speech Synthesizer
	log    *logrus.Logger
	wsHub  *WSHub
	audio  singleflight.Group
}

// NewServer creates a configured API server with all routes and middleware.
// It subscribes to the runner so stored reports reach WebSocket clients and
// stale audio is dropped.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	srv := &Server{
		cfg:    d.Config,
		store:  d.Store,
		runner: d.Runner,
		speech: d.Speech,
		log:    log,
		wsHub:  NewWSHub(log),
	}
	if srv.runner != nil {
		srv.runner.AddListener(pipeline.ListenerFunc(srv.reportUpdated))
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/ui/{company}", s.handleUI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/companies", s.handleCompanies)
		r.Get("/report/{company}", s.handleGetReport)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/refresh/{company}", s.handleRefresh)
		r.Get("/tts/{company}", s.handleTTS)

		r.Get("/config", s.handleGetConfig)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// reportUpdated tells WebSocket clients about a stored report and drops any
// audio rendered from the previous verdict.
func (s *Server) reportUpdated(_ context.Context, rep *models.Report) {
	s.invalidateAudio(rep.Company)
	s.wsHub.Broadcast(WSMessage{
		Type: MsgReportUpdated,
		Data: ReportUpdate{Company: rep.Company, Slug: utils.Slug(rep.Company)},
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	WSClients int    `json:"ws_clients"`
}

// CompaniesResponse lists the tracked companies.
type CompaniesResponse struct {
	Companies []string `json:"companies"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Company  string                `json:"company"`
	Articles []models.ArticleInput `json:"articles"`
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
