package domain

import "fmt"

const (
	// DefaultPageLimit is the history page size when ?limit is absent.
	DefaultPageLimit = 20
	// MaxPageLimit caps ?limit.
	MaxPageLimit = 100
	// MaxPage caps ?page so Offset stays well inside a Postgres bigint.
	MaxPage = 1_000_000
)

// PaginationParams selects one 1-based page of a caller's session history,
// newest first.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams resolves the optional ?page and ?limit values. Missing
// or non-positive values fall back to page 1 and DefaultPageLimit; larger
// values are clamped to MaxPage and MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// CheckPage rejects a requested page beyond MaxPage.
func CheckPage(page *int) error {
	if page != nil && *page > MaxPage {
		return fmt.Errorf("%w: page must be at most %d", ErrValidation, MaxPage)
	}
	return nil
}

// Offset is the number of sessions skipped before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
