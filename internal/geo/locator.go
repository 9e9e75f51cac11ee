// Package geo resolves an itinerary's coordinates to its local time zone.
package geo

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Locator maps coordinates to a *time.Location. The time zone polygons are
// loaded on first use.
type Locator struct {
	logger *slog.Logger

	once   sync.Once
	finder tzf.F
}

// NewLocator constructs a Locator.
func NewLocator(logger *slog.Logger) *Locator {
	return &Locator{logger: logger}
}

// Location returns the zone containing c, or UTC when it cannot be resolved
// (open ocean, unknown zone name, finder load failure).
func (l *Locator) Location(c domain.Coordinates) *time.Location {
	l.once.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			l.logger.Error("time zone finder unavailable", "error", err)
			return
		}
		l.finder = f
	})
	if l.finder == nil || !c.Valid() {
		return time.UTC
	}

	name := l.finder.GetTimezoneName(c.Lng, c.Lat)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		l.logger.Warn("unknown time zone", "zone", name, "error", err)
		return time.UTC
	}
	return loc
}
