package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/handler"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/middleware"
	basemw "github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/middleware"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/response"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/push"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matchmaker"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/registry"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/submission"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Store       storage.Store
	Registry    *registry.Controller
	Matchmaker  *matchmaker.Controller
	Sessions    *session.Controller
	Submissions *submission.Controller
	HubManager  *push.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	participantHandler := handler.NewParticipantHandler(cfg.Registry)
	sessionHandler := handler.NewSessionHandler(cfg.Matchmaker, cfg.Sessions, cfg.HubManager)
	submissionHandler := handler.NewSubmissionHandler(cfg.Submissions)
	reportHandler := handler.NewReportHandler(cfg.Registry)

	// Create middleware
	identityMiddleware := middleware.Identity(cfg.Store)
	loggingMiddleware := basemw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Resolve is the front door; it establishes the identity everything
	// else requires
	api.HandleFunc("/participants/resolve", participantHandler.Resolve).Methods(http.MethodPost)

	// Protected participant routes
	participants := api.PathPrefix("/participants").Subrouter()
	participants.Use(identityMiddleware)
	participants.HandleFunc("/me", participantHandler.Me).Methods(http.MethodGet)
	participants.HandleFunc("/me/category", participantHandler.SetCategory).Methods(http.MethodPost)

	// Session routes (all require identity)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(identityMiddleware)
	sessions.HandleFunc("/join", sessionHandler.Join).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/roster-ack", sessionHandler.RosterAck).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/responses", submissionHandler.Respond).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/choices", submissionHandler.Choose).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/matches", sessionHandler.Matches).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/events", sessionHandler.Events).Methods(http.MethodGet)

	// Report routes (require identity)
	reports := api.PathPrefix("/reports").Subrouter()
	reports.Use(identityMiddleware)
	reports.HandleFunc("", reportHandler.Create).Methods(http.MethodPost)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status: "ok",
		Time:   time.Now().UTC(),
	})
}
