// Package generation turns a trip request into a structured Itinerary by
// calling a generative model under a strict output schema.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Client builds the instruction, sends it through a Provider once, and
// validates the answer. It never retries.
type Client struct {
	provider Provider
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client over provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{provider: provider, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns an itinerary for the request. Errors wrap one of
// domain.ErrMissingCredential, ErrInvalidCredential, ErrMalformedResponse or
// ErrProviderUnavailable. days is not re-validated here.
func (c *Client) Generate(ctx context.Context, destination string, days int, interests string) (domain.Itinerary, error) {
	start := time.Now()
	text, err := c.provider.Complete(ctx, Request{
		Prompt:      BuildPrompt(destination, days, interests),
		Schema:      ItinerarySchema,
		Temperature: Temperature,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindUnknown {
			// Encoding failures and context cancellation end up here.
			err = fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
		}
		c.logger.Warn("generation failed",
			"provider", c.provider.Name(),
			"kind", domain.KindOf(err),
			"duration", time.Since(start),
			"error", err)
		return domain.Itinerary{}, fmt.Errorf("generation.Client.Generate: %w", err)
	}

	it, err := Parse(text, days)
	if err != nil {
		c.logger.Warn("generation returned malformed itinerary",
			"provider", c.provider.Name(),
			"error", err,
			"output", compactJSON(text))
		return domain.Itinerary{}, fmt.Errorf("generation.Client.Generate: %w", err)
	}

	c.logger.Info("itinerary generated",
		"provider", c.provider.Name(),
		"destination", it.Destination,
		"days", len(it.Days),
		"duration", time.Since(start))
	return it, nil
}
