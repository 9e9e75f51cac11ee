package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
)

// ListSessions handles GET /sessions.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid page parameter"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid limit parameter"))
		return
	}

	if err := domain.CheckPage(page); err != nil {
		s.respondError(w, r, err)
		return
	}

	params := domain.NewPaginationParams(page, limit)
	sessions, total, err := s.sessions.ListByOwnerPaged(r.Context(), middleware.PrincipalFrom(r.Context()), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := make([]Session, len(sessions))
	for i, sess := range sessions {
		data[i] = sessionToResponse(sess)
	}
	writeJSON(w, http.StatusOK, SessionList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := s.sessions.GetByID(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// sessionID binds the {id} path parameter, writing a 422 when it is not a UUID.
func sessionID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("id must be a UUID"))
		return id, false
	}
	return id, true
}
