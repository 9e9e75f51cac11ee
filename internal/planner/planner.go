// Package planner sequences one itinerary request through generation,
// weather enrichment and persistence.
//
// Only generation can fail a run. Enrichment yields nil weather on failure
// and persistence failures are logged; both still end in Done.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// State is a step of the pipeline.
type State string

const (
	Idle       State = "idle"
	Generating State = "generating"
	Enriching  State = "enriching"
	Persisting State = "persisting"
	Done       State = "done"
	Errored    State = "errored"
)

// InFlight reports whether a run in state s is still executing.
func (s State) InFlight() bool {
	return s == Generating || s == Enriching || s == Persisting
}

// Generator produces an itinerary. *generation.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, destination string, days int, interests string) (domain.Itinerary, error)
}

// WeatherFetcher looks up current weather. *weather.Client satisfies it.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, c domain.Coordinates) *domain.Weather
}

// SessionSaver persists a finished run. *service.SessionService satisfies it.
type SessionSaver interface {
	Save(ctx context.Context, owner *domain.Principal, prompt string, it domain.Itinerary, w *domain.Weather) (domain.Session, error)
}

// PrincipalSource yields the principal to attribute a session to. It is
// read when persistence starts, not when the run is submitted.
// *identity.Handle satisfies it.
type PrincipalSource interface {
	Current() *domain.Principal
}

// StaticPrincipal is a PrincipalSource that never changes.
type StaticPrincipal struct {
	P *domain.Principal
}

func (s StaticPrincipal) Current() *domain.Principal { return s.P }

// Run is a snapshot of one pipeline execution.
type Run struct {
	Key        string                   `json:"-"`
	State      State                    `json:"state"`
	Request    domain.GenerationRequest `json:"request"`
	Itinerary  *domain.Itinerary        `json:"itinerary,omitempty"`
	Weather    *domain.Weather          `json:"weather,omitempty"`
	SessionID  *uuid.UUID               `json:"sessionId,omitempty"`
	ErrorKind  domain.ErrorKind         `json:"errorKind,omitempty"`
	Error      string                   `json:"error,omitempty"`
	StartedAt  time.Time                `json:"startedAt"`
	FinishedAt *time.Time               `json:"finishedAt,omitempty"`
}

// Observer receives pipeline measurements. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
	ObserveRun(outcome string, d time.Duration)
	CountEnrichment(ok bool)
	CountPersistence(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, time.Duration) {}
func (nopObserver) ObserveRun(string, time.Duration)   {}
func (nopObserver) CountEnrichment(bool)               {}
func (nopObserver) CountPersistence(string)            {}

// Persistence results reported to the Observer.
const (
	PersistSaved   = "saved"
	PersistSkipped = "skipped"
	PersistFailed  = "failed"
)

// Planner runs the pipeline and keeps the latest run per key in memory.
type Planner struct {
	gen      Generator
	weather  WeatherFetcher
	sessions SessionSaver
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mu   sync.Mutex
	runs map[string]*Run
}

// Option configures a Planner.
type Option func(*Planner)

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(p *Planner) { p.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New constructs a Planner.
func New(gen Generator, weather WeatherFetcher, sessions SessionSaver, logger *slog.Logger, opts ...Option) *Planner {
	p := &Planner{
		gen:      gen,
		weather:  weather,
		sessions: sessions,
		logger:   logger,
		observer: nopObserver{},
		now:      time.Now,
		runs:     make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status returns the latest run for key. A key that never ran reports Idle.
func (p *Planner) Status(key string) Run {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.runs[key]; ok && key != "" {
		return *r
	}
	return Run{Key: key, State: Idle}
}

// Submit validates req and runs the pipeline to completion.
//
// key identifies whose runs must not overlap; a second Submit for a key
// whose run is still in flight fails with domain.ErrBusy and leaves the
// running pipeline untouched. An empty key runs untracked.
//
// The returned error is non-nil only for validation, ErrBusy, and
// generation failures. The Run is returned in every case after the
// pipeline started.
func (p *Planner) Submit(ctx context.Context, key string, req domain.GenerationRequest, principals PrincipalSource) (Run, error) {
	if err := req.Validate(); err != nil {
		return Run{}, fmt.Errorf("planner.Planner.Submit: %w", err)
	}

	run, err := p.start(key, req)
	if err != nil {
		return Run{}, err
	}
	started := run.StartedAt

	// Generating
	stageStart := p.now()
	it, err := p.gen.Generate(ctx, req.Destination, req.Days, req.Interests)
	p.observer.ObserveStage(string(Generating), p.now().Sub(stageStart))
	if err != nil {
		kind := domain.KindOf(err)
		snapshot := p.update(run, func(r *Run) {
			r.State = Errored
			r.ErrorKind = kind
			r.Error = UserMessage(err)
			r.FinishedAt = p.stamp()
		})
		p.observer.ObserveRun(string(Errored), p.now().Sub(started))
		p.logger.Warn("itinerary run failed", "key", key, "kind", kind, "error", err)
		return snapshot, fmt.Errorf("planner.Planner.Submit: %w", err)
	}
	p.update(run, func(r *Run) {
		r.State = Enriching
		r.Itinerary = &it
	})

	// Enriching
	stageStart = p.now()
	w := p.weather.FetchWeather(ctx, it.Coordinates)
	p.observer.ObserveStage(string(Enriching), p.now().Sub(stageStart))
	p.observer.CountEnrichment(w != nil)
	p.update(run, func(r *Run) {
		r.State = Persisting
		r.Weather = w
	})

	// Persisting
	stageStart = p.now()
	sessionID := p.persist(ctx, key, req, it, w, principals)
	p.observer.ObserveStage(string(Persisting), p.now().Sub(stageStart))

	snapshot := p.update(run, func(r *Run) {
		r.State = Done
		r.SessionID = sessionID
		r.FinishedAt = p.stamp()
	})
	p.observer.ObserveRun(string(Done), p.now().Sub(started))
	return snapshot, nil
}

// persist saves the run when a principal is present at this moment.
// Failures are logged and never fail the run.
func (p *Planner) persist(ctx context.Context, key string, req domain.GenerationRequest, it domain.Itinerary, w *domain.Weather, principals PrincipalSource) *uuid.UUID {
	var owner *domain.Principal
	if principals != nil {
		owner = principals.Current()
	}
	if owner == nil {
		p.observer.CountPersistence(PersistSkipped)
		p.logger.Debug("no principal at persistence time; session not saved", "key", key)
		return nil
	}

	session, err := p.sessions.Save(ctx, owner, req.Prompt(), it, w)
	if err != nil {
		p.observer.CountPersistence(PersistFailed)
		p.logger.Error("session not saved", "key", key, "uid", owner.UID, "kind", domain.KindOf(err), "error", err)
		return nil
	}
	p.observer.CountPersistence(PersistSaved)
	return &session.ID
}

// start registers a new run for key, resetting any previous result.
func (p *Planner) start(key string, req domain.GenerationRequest) (*Run, error) {
	run := &Run{Key: key, State: Generating, Request: req, StartedAt: p.now().UTC()}
	if key == "" {
		return run, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.runs[key]; ok && prev.State.InFlight() {
		return nil, fmt.Errorf("planner.Planner.Submit: %w", domain.ErrBusy)
	}
	p.runs[key] = run
	return run, nil
}

// update mutates run under the lock and returns a copy.
func (p *Planner) update(run *Run, fn func(r *Run)) Run {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(run)
	return *run
}

func (p *Planner) stamp() *time.Time {
	t := p.now().UTC()
	return &t
}

// UserMessage turns a generation failure into text for the error panel.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "The itinerary generator is not configured. Set the generation API key and restart the server."
	case errors.Is(err, domain.ErrInvalidCredential):
		return "Invalid API key. Please check the generation provider configuration."
	case errors.Is(err, domain.ErrMalformedResponse):
		return "The AI returned an itinerary we could not read. Please try again."
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "The itinerary generator is unavailable right now. Please try again."
	default:
		return "Failed to generate itinerary. Please try again."
	}
}
