package domain

import (
	"fmt"
	"strings"
)

// Day count bounds accepted by the planner form.
const (
	MinTripDays = 1
	MaxTripDays = 14
)

// GenerationRequest is the raw form submission. It only lives for the
// duration of one planner run.
type GenerationRequest struct {
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Interests   string `json:"interests"`
}

// Validate enforces the form constraints.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if r.Days < MinTripDays || r.Days > MaxTripDays {
		return fmt.Errorf("%w: days must be between %d and %d", ErrValidation, MinTripDays, MaxTripDays)
	}
	if strings.TrimSpace(r.Interests) == "" {
		return fmt.Errorf("%w: interests are required", ErrValidation)
	}
	return nil
}

// Prompt is the history text stored alongside a generated itinerary.
func (r GenerationRequest) Prompt() string {
	return fmt.Sprintf("Trip to %s for %d days. Interests: %s", r.Destination, r.Days, r.Interests)
}

// Coordinates are WGS84 degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both values fall inside their WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Activity is one entry of a day plan. All four fields are required.
type Activity struct {
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// Day is one day of an itinerary.
type Day struct {
	DayTitle   string     `json:"dayTitle"`
	Activities []Activity `json:"activities"`
}

// Itinerary is the structured plan produced by the generative model.
type Itinerary struct {
	Destination string      `json:"destination"`
	Coordinates Coordinates `json:"coordinates"`
	Summary     string      `json:"summary"`
	Days        []Day       `json:"days"`
}
