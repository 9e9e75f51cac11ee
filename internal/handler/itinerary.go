package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/identity"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
)

// CreateItinerary handles POST /itineraries.
//
// The pipeline runs detached from the request context, so a client that
// disconnects does not abort it. For an authenticated caller the principal
// is tracked through the identity stream and read again at persistence
// time; signing out mid-run means the result is not saved.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var body ItineraryRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req := domain.GenerationRequest{
		Destination: body.Destination,
		Days:        body.Days,
		Interests:   body.Interests,
	}

	var (
		key        string
		principals planner.PrincipalSource
	)
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		key = p.UID
		h := identity.Watch(s.identity, middleware.TokenFrom(r.Context()))
		defer h.Close()
		principals = h
	}

	run, err := s.planner.Submit(context.WithoutCancel(r.Context()), key, req, principals)
	if err != nil {
		kind := domain.KindOf(err)
		if run.State == planner.Errored {
			writeJSON(w, statusFor(kind), errorBody(run.ErrorKind, run.Error))
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(domain.KindValidation, unwrapMessage(err)))
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(run))
}

// GetItineraryStatus handles GET /itineraries/status.
// It reports the caller's latest run, or state "idle" when there is none.
func (s *Server) GetItineraryStatus(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFrom(r.Context())
	writeJSON(w, http.StatusOK, runToResponse(s.planner.Status(p.UID)))
}
