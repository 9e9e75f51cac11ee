// Package domain contains the core data types for the WanderAI API.
// It has no dependencies on other internal packages and is imported by
// every layer (repo, service, planner, handler).
package domain

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest password the identity provider accepts.
const MinPasswordLength = 6

// Principal is the authenticated actor on whose behalf actions run.
// It is created by the identity provider and never mutated afterwards.
type Principal struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is the stored identity record behind a Principal.
type User struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal returns the public view of the user.
func (u User) Principal() Principal {
	return Principal{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// DefaultDisplayName derives a display name from an email address when the
// user did not provide one.
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "Traveler"
}
