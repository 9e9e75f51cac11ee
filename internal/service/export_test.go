package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/service"
)

// mockSessionGetter is a hand-written test double for service.SessionGetter.
type mockSessionGetter struct {
	getByID func(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error)
}

func (m *mockSessionGetter) GetByID(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error) {
	return m.getByID(ctx, owner, id)
}

// fixedLocator always answers with loc.
type fixedLocator struct{ loc *time.Location }

func (f fixedLocator) Location(domain.Coordinates) *time.Location { return f.loc }

func exportSession() domain.Session {
	return domain.Session{
		ID:     uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		UserID: "p",
		Response: domain.Itinerary{
			Destination: "Tokyo",
			Coordinates: domain.Coordinates{Lat: 35.6762, Lng: 139.6503},
			Summary:     "s",
			Days: []domain.Day{
				{DayTitle: "Temples", Activities: []domain.Activity{
					{Time: "9:00 AM", Activity: "Senso-ji", Description: "Early visit.", Emoji: "⛩️"},
					{Time: "10:00 AM", Activity: "Nakamise", Description: "Snacks.", Emoji: "🍡"},
				}},
				{DayTitle: "Rest", Activities: nil},
			},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newExport(s domain.Session, err error) *service.ExportService {
	return service.NewExportService(&mockSessionGetter{
		getByID: func(context.Context, *domain.Principal, uuid.UUID) (domain.Session, error) {
			return s, err
		},
	}, fixedLocator{loc: time.UTC})
}

func TestExportService_Rows(t *testing.T) {
	s := exportSession()
	rows, err := newExport(s, nil).Rows(context.Background(), principal("p"), s.ID)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportRow{DayNumber: 1, DayTitle: "Temples", Time: "9:00 AM", Activity: "Senso-ji", Description: "Early visit.", Emoji: "⛩️"}, rows[0])
	assert.Equal(t, "Nakamise", rows[1].Activity)
	assert.Equal(t, domain.ExportRow{DayNumber: 2, DayTitle: "Rest"}, rows[2])
}

func TestExportService_Rows_NotFound(t *testing.T) {
	_, err := newExport(domain.Session{}, domain.ErrNotFound).Rows(context.Background(), principal("q"), uuid.New())

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportService_Calendar(t *testing.T) {
	s := exportSession()
	start := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	out, err := newExport(s, nil).Calendar(context.Background(), principal("p"), s.ID, start)
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "⛩️ Senso-ji", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Tokyo", first.GetProperty(ics.ComponentPropertyLocation).Value)

	begin, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, begin.Equal(time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC)), "ends when the next activity starts")
}
