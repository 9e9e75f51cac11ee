package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// fencePattern matches a response wrapped whole in a markdown code block.
var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\s*```$")

// The wire shapes use pointers so absent and null fields are detectable.
type wireItinerary struct {
	Destination *string          `json:"destination"`
	Coordinates *wireCoordinates `json:"coordinates"`
	Summary     *string          `json:"summary"`
	Days        *[]wireDay       `json:"days"`
}

type wireCoordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type wireDay struct {
	DayTitle   *string         `json:"dayTitle"`
	Activities *[]wireActivity `json:"activities"`
}

type wireActivity struct {
	Time        *string `json:"time"`
	Activity    *string `json:"activity"`
	Description *string `json:"description"`
	Emoji       *string `json:"emoji"`
}

// Parse decodes model output into an Itinerary. Unknown fields, missing or
// empty required fields, out-of-range coordinates, and a day count other
// than wantDays all fail with domain.ErrMalformedResponse.
func Parse(text string, wantDays int) (domain.Itinerary, error) {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var w wireItinerary
	if err := dec.Decode(&w); err != nil {
		return domain.Itinerary{}, malformed("decode: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Itinerary{}, malformed("trailing data after JSON object")
	}

	return w.itinerary(wantDays)
}

func (w wireItinerary) itinerary(wantDays int) (domain.Itinerary, error) {
	var it domain.Itinerary
	var err error

	if it.Destination, err = required("destination", w.Destination); err != nil {
		return domain.Itinerary{}, err
	}
	if it.Summary, err = required("summary", w.Summary); err != nil {
		return domain.Itinerary{}, err
	}

	if w.Coordinates == nil || w.Coordinates.Lat == nil || w.Coordinates.Lng == nil {
		return domain.Itinerary{}, malformed("coordinates are required")
	}
	it.Coordinates = domain.Coordinates{Lat: *w.Coordinates.Lat, Lng: *w.Coordinates.Lng}
	if !it.Coordinates.Valid() {
		return domain.Itinerary{}, malformed("coordinates out of range: %v,%v", it.Coordinates.Lat, it.Coordinates.Lng)
	}

	if w.Days == nil || len(*w.Days) == 0 {
		return domain.Itinerary{}, malformed("days are required")
	}
	if len(*w.Days) != wantDays {
		return domain.Itinerary{}, malformed("got %d days, want %d", len(*w.Days), wantDays)
	}

	it.Days = make([]domain.Day, len(*w.Days))
	for i, d := range *w.Days {
		day := &it.Days[i]
		if day.DayTitle, err = required(fmt.Sprintf("days[%d].dayTitle", i), d.DayTitle); err != nil {
			return domain.Itinerary{}, err
		}
		if d.Activities == nil {
			return domain.Itinerary{}, malformed("days[%d].activities are required", i)
		}
		day.Activities = make([]domain.Activity, len(*d.Activities))
		for j, a := range *d.Activities {
			if day.Activities[j], err = a.activity(i, j); err != nil {
				return domain.Itinerary{}, err
			}
		}
	}
	return it, nil
}

func (a wireActivity) activity(day, idx int) (domain.Activity, error) {
	field := func(name string) string { return fmt.Sprintf("days[%d].activities[%d].%s", day, idx, name) }

	var out domain.Activity
	var err error
	if out.Time, err = required(field("time"), a.Time); err != nil {
		return out, err
	}
	if out.Activity, err = required(field("activity"), a.Activity); err != nil {
		return out, err
	}
	if out.Description, err = required(field("description"), a.Description); err != nil {
		return out, err
	}
	if out.Emoji, err = required(field("emoji"), a.Emoji); err != nil {
		return out, err
	}
	return out, nil
}

func required(name string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", malformed("%s is required", name)
	}
	return *v, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// compactJSON is used in logs to keep a single-line copy of model output.
func compactJSON(text string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return text
	}
	return buf.String()
}
