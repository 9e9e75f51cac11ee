package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// SessionGetter is the lookup ExportService needs. SessionService satisfies it.
type SessionGetter interface {
	GetByID(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error)
}

// Locator resolves coordinates to a time zone. geo.Locator satisfies it.
type Locator interface {
	Location(c domain.Coordinates) *time.Location
}

// ExportService renders a saved session as flat rows or as an iCalendar.
type ExportService struct {
	sessions SessionGetter
	locator  Locator
}

// NewExportService constructs an ExportService.
func NewExportService(sessions SessionGetter, locator Locator) *ExportService {
	return &ExportService{sessions: sessions, locator: locator}
}

// Rows returns one ExportRow per activity of the session.
// Days with no activities contribute one row with empty activity fields.
func (s *ExportService) Rows(ctx context.Context, owner *domain.Principal, id uuid.UUID) ([]domain.ExportRow, error) {
	session, err := s.sessions.GetByID(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Rows: %w", err)
	}
	return ExportRows(session.Response), nil
}

// ExportRows flattens an itinerary.
func ExportRows(it domain.Itinerary) []domain.ExportRow {
	return lo.FlatMap(it.Days, func(d domain.Day, i int) []domain.ExportRow {
		if len(d.Activities) == 0 {
			return []domain.ExportRow{{DayNumber: i + 1, DayTitle: d.DayTitle}}
		}
		return lo.Map(d.Activities, func(a domain.Activity, _ int) domain.ExportRow {
			return domain.ExportRow{
				DayNumber:   i + 1,
				DayTitle:    d.DayTitle,
				Time:        a.Time,
				Activity:    a.Activity,
				Description: a.Description,
				Emoji:       a.Emoji,
			}
		})
	})
}

// Calendar renders the session as an iCalendar document with one event per
// activity. Day 1 falls on start's date in the destination's time zone.
func (s *ExportService) Calendar(ctx context.Context, owner *domain.Principal, id uuid.UUID, start time.Time) (string, error) {
	session, err := s.sessions.GetByID(ctx, owner, id)
	if err != nil {
		return "", fmt.Errorf("service.ExportService.Calendar: %w", err)
	}

	it := session.Response
	loc := s.locator.Location(it.Coordinates)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//WanderAI//Itinerary Export//EN")
	cal.SetXWRCalName("Trip to " + it.Destination)
	cal.SetXWRTimezone(loc.String())

	for d, day := range it.Days {
		date := time.Date(start.Year(), start.Month(), start.Day()+d, 0, 0, 0, 0, loc)
		slots := schedule(date, day.Activities)
		for a, act := range day.Activities {
			event := cal.AddEvent(fmt.Sprintf("%s-%d-%d@wanderai", session.ID, d+1, a+1))
			event.SetDtStampTime(session.CreatedAt)
			event.SetStartAt(slots[a].start)
			event.SetEndAt(slots[a].end)
			event.SetSummary(strings.TrimSpace(act.Emoji + " " + act.Activity))
			event.SetDescription(fmt.Sprintf("Day %d: %s\n%s", d+1, day.DayTitle, act.Description))
			event.SetLocation(it.Destination)
		}
	}
	return cal.Serialize(), nil
}

type slot struct {
	start, end time.Time
}

const defaultActivityLength = 90 * time.Minute

// schedule assigns a start and end to each activity on date. Unreadable
// times fall back to 09:00 plus two hours per position. An activity ends
// when the next one starts, or after defaultActivityLength.
func schedule(date time.Time, acts []domain.Activity) []slot {
	slots := make([]slot, len(acts))
	for i, a := range acts {
		offset, ok := parseActivityTime(a.Time)
		if !ok {
			offset = 9*time.Hour + time.Duration(2*i)*time.Hour
		}
		slots[i].start = date.Add(offset)
	}
	for i := range slots {
		slots[i].end = slots[i].start.Add(defaultActivityLength)
		if i+1 < len(slots) {
			next := slots[i+1].start
			if next.After(slots[i].start) && next.Before(slots[i].end) {
				slots[i].end = next
			}
		}
	}
	return slots
}

var (
	clock12 = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?\s*m\.?$`)
	clock24 = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	// Checked in order; "afternoon" must precede "noon".
	dayParts = []struct {
		word string
		at   time.Duration
	}{
		{"breakfast", 8 * time.Hour},
		{"morning", 9 * time.Hour},
		{"afternoon", 14 * time.Hour},
		{"noon", 12 * time.Hour},
		{"lunch", 12 * time.Hour},
		{"evening", 18 * time.Hour},
		{"dinner", 19 * time.Hour},
		{"night", 20 * time.Hour},
	}
)

// parseActivityTime reads model-written times such as "9:00 AM", "14:30",
// "Morning" or "10:00 AM - 12:00 PM" as an offset from midnight.
func parseActivityTime(raw string) (time.Duration, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = strings.TrimSpace(s[:i])
	}

	if m := clock12.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 || mins > 59 {
			return 0, false
		}
		h %= 12
		if strings.EqualFold(m[3], "p") {
			h += 12
		}
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute, true
	}
	if m := clock24.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if h > 23 || mins > 59 {
			return 0, false
		}
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute, true
	}

	lower := strings.ToLower(s)
	for _, dp := range dayParts {
		if strings.Contains(lower, dp.word) {
			return dp.at, true
		}
	}
	return 0, false
}
