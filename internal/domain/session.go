package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a persisted (prompt, itinerary, weather) record.
// It is created once and never updated. UserID is the owner's Principal.UID
// and is the only predicate for read visibility.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Prompt    string    `json:"prompt"`
	Response  Itinerary `json:"response"`
	Weather   *Weather  `json:"weather,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
