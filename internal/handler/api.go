package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
)

// Request and response bodies. Field names follow spec/openapi.yaml.

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email       openapi_types.Email `json:"email"`
	Password    string              `json:"password"`
	DisplayName *string             `json:"displayName,omitempty"`
}

type SignInRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

type AuthResponse struct {
	Principal domain.Principal `json:"principal"`
	Token     string           `json:"token"`
}

type ItineraryRequest struct {
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Interests   string `json:"interests"`
}

// Weather adds the readable condition to the stored measurement.
type Weather struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weatherCode"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
	Emoji       string  `json:"emoji"`
}

type Run struct {
	State      planner.State            `json:"state"`
	Request    domain.GenerationRequest `json:"request"`
	Itinerary  *domain.Itinerary        `json:"itinerary,omitempty"`
	Weather    *Weather                 `json:"weather,omitempty"`
	SessionID  *openapi_types.UUID      `json:"sessionId,omitempty"`
	ErrorKind  domain.ErrorKind         `json:"errorKind,omitempty"`
	Error      string                   `json:"error,omitempty"`
	StartedAt  *time.Time               `json:"startedAt,omitempty"`
	FinishedAt *time.Time               `json:"finishedAt,omitempty"`
}

type Session struct {
	ID        openapi_types.UUID `json:"id"`
	Prompt    string             `json:"prompt"`
	Response  domain.Itinerary   `json:"response"`
	Weather   *Weather           `json:"weather,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type SessionList struct {
	Data       []Session  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ExportRow struct {
	DayNumber   int    `json:"dayNumber"`
	DayTitle    string `json:"dayTitle"`
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// --- mapping helpers --------------------------------------------------------

func weatherToResponse(w *domain.Weather) *Weather {
	if w == nil {
		return nil
	}
	c := w.Describe()
	return &Weather{
		Temperature: w.Temperature,
		WeatherCode: w.WeatherCode,
		WindSpeed:   w.WindSpeed,
		Condition:   c.Label,
		Emoji:       c.Emoji,
	}
}

func runToResponse(r planner.Run) Run {
	resp := Run{
		State:      r.State,
		Request:    r.Request,
		Itinerary:  r.Itinerary,
		Weather:    weatherToResponse(r.Weather),
		SessionID:  r.SessionID,
		ErrorKind:  r.ErrorKind,
		Error:      r.Error,
		FinishedAt: r.FinishedAt,
	}
	if !r.StartedAt.IsZero() {
		started := r.StartedAt
		resp.StartedAt = &started
	}
	return resp
}

func sessionToResponse(s domain.Session) Session {
	return Session{
		ID:        s.ID,
		Prompt:    s.Prompt,
		Response:  s.Response,
		Weather:   weatherToResponse(s.Weather),
		CreatedAt: s.CreatedAt,
	}
}
