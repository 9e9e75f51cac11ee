package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/handler"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
)

// ---- mock Identity -------------------------------------------------------------

// mockIdentity is a test double for handler.Identity.
// Verify accepts adaToken unless verify is set.
type mockIdentity struct {
	signUp    func(ctx context.Context, email, password, displayName string) (domain.Principal, string, error)
	signIn    func(ctx context.Context, email, password string) (domain.Principal, string, error)
	signOut   func(token string)
	verify    func(token string) (*domain.Principal, error)
	subscribe func(token string, fn func(*domain.Principal)) func()
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) (domain.Principal, string, error) {
	return m.signUp(ctx, email, password, displayName)
}
func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (domain.Principal, string, error) {
	return m.signIn(ctx, email, password)
}
func (m *mockIdentity) SignOut(token string) {
	if m.signOut != nil {
		m.signOut(token)
	}
}
func (m *mockIdentity) Verify(token string) (*domain.Principal, error) {
	if m.verify != nil {
		return m.verify(token)
	}
	if token == adaToken {
		p := ada
		return &p, nil
	}
	return nil, domain.ErrNotAuthenticated
}
func (m *mockIdentity) Subscribe(token string, fn func(*domain.Principal)) func() {
	if m.subscribe != nil {
		return m.subscribe(token, fn)
	}
	p, _ := m.Verify(token)
	fn(p)
	return func() {}
}

var _ handler.Identity = (*mockIdentity)(nil)

// ---- mock SessionServicer ------------------------------------------------------

type mockSessionServicer struct {
	listPaged func(ctx context.Context, owner *domain.Principal, p domain.PaginationParams) ([]domain.Session, int64, error)
	getByID   func(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error)
}

func (m *mockSessionServicer) ListByOwnerPaged(ctx context.Context, owner *domain.Principal, p domain.PaginationParams) ([]domain.Session, int64, error) {
	return m.listPaged(ctx, owner, p)
}
func (m *mockSessionServicer) GetByID(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error) {
	return m.getByID(ctx, owner, id)
}

var _ handler.SessionServicer = (*mockSessionServicer)(nil)

// ---- mock ExportServicer -------------------------------------------------------

type mockExportServicer struct {
	rows     func(ctx context.Context, owner *domain.Principal, id uuid.UUID) ([]domain.ExportRow, error)
	calendar func(ctx context.Context, owner *domain.Principal, id uuid.UUID, start time.Time) (string, error)
}

func (m *mockExportServicer) Rows(ctx context.Context, owner *domain.Principal, id uuid.UUID) ([]domain.ExportRow, error) {
	return m.rows(ctx, owner, id)
}
func (m *mockExportServicer) Calendar(ctx context.Context, owner *domain.Principal, id uuid.UUID, start time.Time) (string, error) {
	return m.calendar(ctx, owner, id, start)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- mock Planner --------------------------------------------------------------

type mockPlanner struct {
	submit func(ctx context.Context, key string, req domain.GenerationRequest, principals planner.PrincipalSource) (planner.Run, error)
	status func(key string) planner.Run
}

func (m *mockPlanner) Submit(ctx context.Context, key string, req domain.GenerationRequest, principals planner.PrincipalSource) (planner.Run, error) {
	return m.submit(ctx, key, req, principals)
}
func (m *mockPlanner) Status(key string) planner.Run {
	return m.status(key)
}

var _ handler.Planner = (*mockPlanner)(nil)

// ---- helpers -------------------------------------------------------------------

const adaToken = "tok-ada"

var ada = domain.Principal{
	UID:         "uid-ada",
	Email:       "ada@example.com",
	DisplayName: "Ada",
	CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
}

// deps lets each test set only the dependencies it exercises.
type deps struct {
	identity *mockIdentity
	sessions *mockSessionServicer
	export   *mockExportServicer
	planner  *mockPlanner
	now      func() time.Time
}

// newHTTPHandler wires a Server with the given mocks into its router.
// This mirrors how main.go mounts it in production.
func newHTTPHandler(d deps) http.Handler {
	if d.identity == nil {
		d.identity = &mockIdentity{}
	}
	srv := handler.NewServer(d.identity, d.sessions, d.export, d.planner, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if d.now != nil {
		srv.WithClock(d.now)
	}
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func sessionFixture() domain.Session {
	return domain.Session{
		ID:     uuid.New(),
		UserID: ada.UID,
		Prompt: "Trip to Tokyo for 1 days. Interests: food",
		Response: domain.Itinerary{
			Destination: "Tokyo",
			Coordinates: domain.Coordinates{Lat: 35.68, Lng: 139.69},
			Summary:     "Ramen.",
			Days: []domain.Day{{
				DayTitle:   "Arrival",
				Activities: []domain.Activity{{Time: "9:00 AM", Activity: "Tsukiji", Description: "Sushi breakfast", Emoji: "🍣"}},
			}},
		},
		Weather:   &domain.Weather{Temperature: 22, WeatherCode: 1, WindSpeed: 10},
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
