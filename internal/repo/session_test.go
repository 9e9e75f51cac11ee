package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/repo"
	"github.com/Kinglos01/WanderAi-the-travel-companion/testutil"
)

type sessionEnv struct {
	tx       pgx.Tx
	sessions repo.SessionRepo
	users    repo.UserRepo
}

func newSessionEnv(t *testing.T) sessionEnv {
	t.Helper()
	tx := testutil.NewTx(t)
	return sessionEnv{tx: tx, sessions: repo.NewSessionRepo(tx), users: repo.NewUserRepo(tx)}
}

// owner inserts a user row so sessions can reference it.
func (e sessionEnv) owner(t *testing.T) string {
	t.Helper()
	u, err := e.users.Create(context.Background(), userFixture())
	require.NoError(t, err)
	return u.UID
}

func sessionFixture(uid string, createdAt time.Time) domain.Session {
	return domain.Session{
		UserID: uid,
		Prompt: "Trip to Tokyo for 1 days. Interests: food",
		Response: domain.Itinerary{
			Destination: "Tokyo",
			Coordinates: domain.Coordinates{Lat: 35.6762, Lng: 139.6503},
			Summary:     "Neon nights and quiet shrines.",
			Days: []domain.Day{{
				DayTitle: "Food Crawl",
				Activities: []domain.Activity{
					{Time: "9:00 AM", Activity: "Tsukiji Outer Market", Description: "Breakfast sushi.", Emoji: "🍣"},
				},
			}},
		},
		Weather:   &domain.Weather{Temperature: 22, WeatherCode: 1, WindSpeed: 10},
		CreatedAt: createdAt,
	}
}

func TestSessionRepo_Create_RoundTrip(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	uid := env.owner(t)

	in := sessionFixture(uid, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	created, err := env.sessions.Create(ctx, uid, in)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	list, err := env.sessions.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.Prompt, got.Prompt)
	assert.Equal(t, in.Response, got.Response)
	assert.Equal(t, in.Weather, got.Weather)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
}

func TestSessionRepo_Create_NilWeather(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	uid := env.owner(t)

	in := sessionFixture(uid, time.Time{})
	in.Weather = nil

	got, err := env.sessions.Create(ctx, uid, in)
	require.NoError(t, err)
	assert.Nil(t, got.Weather)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should default to now()")
}

func TestSessionRepo_ListByUser_NewestFirst(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	uid := env.owner(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
		_, err := env.sessions.Create(ctx, uid, sessionFixture(uid, base.Add(offset)))
		require.NoError(t, err)
	}

	list, err := env.sessions.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt), "sessions must be newest first")
	}
}

func TestSessionRepo_OwnerIsolation(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	p := env.owner(t)
	q := env.owner(t)

	s, err := env.sessions.Create(ctx, p, sessionFixture(p, time.Now()))
	require.NoError(t, err)

	list, err := env.sessions.ListByUser(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list, "empty history must be an empty slice")

	_, err = env.sessions.GetByID(ctx, q, s.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := env.sessions.GetByID(ctx, p, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestSessionRepo_Create_ForeignOwnerRejected(t *testing.T) {
	env := newSessionEnv(t)
	if testutil.BypassesRLS(t, env.tx) {
		t.Skip("connected role bypasses row level security")
	}
	ctx := context.Background()
	p := env.owner(t)
	q := env.owner(t)

	_, err := env.sessions.Create(ctx, q, sessionFixture(p, time.Now()))
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestSessionRepo_ListByUserPaged(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()
	uid := env.owner(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		_, err := env.sessions.Create(ctx, uid, sessionFixture(uid, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	page, total, err := env.sessions.ListByUserPaged(ctx, uid, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.Equal(base.Add(2*time.Hour)))
	assert.True(t, page[1].CreatedAt.Equal(base.Add(time.Hour)))
}

func TestSessionRepo_VerifyIndex(t *testing.T) {
	env := newSessionEnv(t)
	require.NoError(t, env.sessions.VerifyIndex(context.Background()))
}

func TestSessionRepo_VerifyIndex_Missing(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	_, err := env.tx.Exec(ctx, `DROP INDEX `+repo.HistoryIndex)
	require.NoError(t, err)

	require.ErrorIs(t, env.sessions.VerifyIndex(ctx), domain.ErrIndexMissing)
}
