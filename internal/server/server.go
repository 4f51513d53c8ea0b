package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"rbb-sathi-backend/internal/assistant"
	"rbb-sathi-backend/internal/backoffice"
	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/config"
	"rbb-sathi-backend/internal/db"
	"rbb-sathi-backend/internal/intent"
	"rbb-sathi-backend/internal/logger"
	"rbb-sathi-backend/internal/metrics"
	"rbb-sathi-backend/internal/store"
	"rbb-sathi-backend/internal/types"
)

type Server struct {
	router     *chi.Mux
	cfg        config.Config
	log        zerolog.Logger
	metrics    *metrics.Metrics
	resolver   chat.Resolver
	assistant  chat.Assistant
	available  bool
	sessions   *store.MemoryStore
	backoffice *backoffice.Service
	database   *db.DB
}

func NewServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	m := metrics.New()

	spec, err := loadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load intent rules: %w", err)
	}
	res, err := intent.NewResolver(spec, intent.WithLogger(log.With().Str("component", "intent").Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent resolver: %w", err)
	}

	prompt, err := assistant.LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant prompt: %w", err)
	}
	gw := assistant.NewGateway(assistant.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
		Timeout: cfg.AssistantTimeout,
		Prompt:  prompt,
		Logger:  log.With().Str("component", "assistant").Logger(),
	})

	// Back office: PostgreSQL when DB_URL is set, seeded memory otherwise
	var database *db.DB
	var repo backoffice.Repository
	if cfg.DatabaseURL != "" {
		database, err = db.New(ctx, cfg.DatabaseURL, log.With().Str("component", "db").Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Migrations); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("database connection established")
		repo = store.NewDatabaseStore(database)
	} else {
		log.Warn().Msg("DB_URL not provided, back office data is kept in memory")
		repo = backoffice.NewMemoryRepository()
	}

	s := &Server{
		router:     chi.NewRouter(),
		cfg:        cfg,
		log:        log,
		metrics:    m,
		resolver:   &meteredResolver{resolver: res, metrics: m},
		assistant:  &meteredAssistant{assistant: gw, metrics: m},
		available:  gw.Available(),
		database:   database,
		backoffice: backoffice.NewService(repo, backoffice.WithLogger(log.With().Str("component", "backoffice").Logger())),
	}
	s.sessions = store.NewMemoryStore(s.newSession, cfg.SessionTTL, cfg.MaxSessions)
	s.routes()
	return s, nil
}

func loadRules(path string) (intent.Spec, error) {
	if path == "" {
		return intent.DefaultSpec()
	}
	return intent.LoadSpec(path)
}

func (s *Server) newSession() *chat.Session {
	return chat.NewSession(s.resolver, s.assistant,
		chat.WithDelay(s.cfg.ReplyDelay),
		chat.WithTimeout(s.cfg.AssistantTimeout),
		chat.WithLogger(s.log.With().Str("component", "chat").Logger()),
	)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/chat/session", s.handleGetSession)
	r.Delete("/api/chat/session", s.handleResetSession)
	r.Post("/api/chat/session/messages", s.handleSendMessage)
	r.Put("/api/chat/session/panel", s.handleSetPanel)

	r.Route("/api/backoffice", func(r chi.Router) {
		r.Get("/documents", s.handleListDocuments)
		r.Post("/documents/{id}/approve", s.handleDecide(backoffice.StatusApproved))
		r.Post("/documents/{id}/reject", s.handleDecide(backoffice.StatusRejected))
		r.Get("/audit", s.handleAudit)
		r.Get("/vendors", s.handleVendors)
		r.Get("/stats", s.handleStats)
	})
}

func (s *Server) Router() http.Handler { return s.router }

// SweepSessions drops idle chat sessions and refreshes the live session gauge.
func (s *Server) SweepSessions(now time.Time) int {
	n := s.sessions.Sweep(now)
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	if n > 0 {
		s.log.Debug().Int("evicted", n).Int("live", s.sessions.Len()).Msg("swept chat sessions")
	}
	return n
}

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "assistant": "configured", "database": "disabled"}
	if !s.available {
		status["assistant"] = "unavailable"
	}
	if s.database != nil {
		status["database"] = "ok"
		if err := s.database.HealthCheck(r.Context()); err != nil {
			s.log.Error().Err(err).Msg("database health check failed")
			status["database"] = "error"
		}
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}
