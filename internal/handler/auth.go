package handler

import (
	"net/http"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
)

// SignUp handles POST /auth/signup.
func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	var body SignUpRequest
	if !decodeBody(w, r, &body) {
		return
	}
	displayName := ""
	if body.DisplayName != nil {
		displayName = *body.DisplayName
	}

	p, token, err := s.identity.SignUp(r.Context(), string(body.Email), body.Password, displayName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Principal: p, Token: token})
}

// SignIn handles POST /auth/signin.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var body SignInRequest
	if !decodeBody(w, r, &body) {
		return
	}

	p, token, err := s.identity.SignIn(r.Context(), string(body.Email), body.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Principal: p, Token: token})
}

// SignOut handles POST /auth/signout. Repeating it is harmless.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	s.identity.SignOut(middleware.TokenFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// GetMe handles GET /auth/me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.PrincipalFrom(r.Context()))
}
