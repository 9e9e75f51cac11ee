package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/config"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Request is one structured-output completion.
type Request struct {
	Prompt      string
	Schema      *Schema
	Temperature float64
}

// Provider sends a single request to a generative model and returns the raw
// text of its answer. Implementations never retry, report a missing API key
// as domain.ErrMissingCredential without touching the network, and classify
// every other failure with classifyStatus or asUnavailable.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected in cfg.
func NewProvider(cfg config.GenerationConfig, hc *http.Client) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL, hc), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, hc), nil
	default:
		return nil, fmt.Errorf("generation.NewProvider: unknown provider %q", cfg.Provider)
	}
}

// classifyStatus maps a non-2xx provider status onto the generation taxonomy.
func classifyStatus(status int, detail string) error {
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d): %s", domain.ErrInvalidCredential, status, detail)
	default:
		// 429, 5xx and any other rejection: the provider could not serve
		// this request.
		return fmt.Errorf("%w (status %d): %s", domain.ErrProviderUnavailable, status, detail)
	}
}

// asUnavailable wraps transport failures, keeping timeouts recognisable.
func asUnavailable(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %w", domain.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}
