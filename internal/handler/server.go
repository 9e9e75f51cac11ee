// Package handler implements the HTTP handlers for the WanderAI API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, auth.go, itinerary.go, ...) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
)

// Identity is the authentication surface the handlers depend on.
// *identity.Provider satisfies it.
type Identity interface {
	SignUp(ctx context.Context, email, password, displayName string) (domain.Principal, string, error)
	SignIn(ctx context.Context, email, password string) (domain.Principal, string, error)
	SignOut(token string)
	Verify(token string) (*domain.Principal, error)
	Subscribe(token string, fn func(*domain.Principal)) func()
}

// SessionServicer reads an owner's history.
type SessionServicer interface {
	ListByOwnerPaged(ctx context.Context, owner *domain.Principal, p domain.PaginationParams) ([]domain.Session, int64, error)
	GetByID(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error)
}

// ExportServicer renders a session for download.
type ExportServicer interface {
	Rows(ctx context.Context, owner *domain.Principal, id uuid.UUID) ([]domain.ExportRow, error)
	Calendar(ctx context.Context, owner *domain.Principal, id uuid.UUID, start time.Time) (string, error)
}

// Planner runs and reports itinerary pipelines. *planner.Planner satisfies it.
type Planner interface {
	Submit(ctx context.Context, key string, req domain.GenerationRequest, principals planner.PrincipalSource) (planner.Run, error)
	Status(key string) planner.Run
}

// Server holds the dependencies of every endpoint.
type Server struct {
	identity Identity
	sessions SessionServicer
	export   ExportServicer
	planner  Planner
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(identity Identity, sessions SessionServicer, export ExportServicer, plan Planner, logger *slog.Logger) *Server {
	return &Server{
		identity: identity,
		sessions: sessions,
		export:   export,
		planner:  plan,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces time.Now, which picks the default calendar start date.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Routes returns the API router. Cross-cutting middleware (request ID,
// logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	requireAuth := middleware.RequireAuth(s.identity)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.SignUp)
		r.Post("/signin", s.SignIn)
		r.With(requireAuth).Post("/signout", s.SignOut)
		r.With(requireAuth).Get("/me", s.GetMe)
	})

	r.With(middleware.OptionalAuth(s.identity)).Post("/itineraries", s.CreateItinerary)
	r.With(requireAuth).Get("/itineraries/status", s.GetItineraryStatus)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", s.ListSessions)
		r.Get("/{id}", s.GetSession)
		r.Get("/{id}/export", s.ExportSession)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody(domain.KindNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})
	return r
}
