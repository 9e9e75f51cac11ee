package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

const issuer = "wanderai"

// claims carries the principal's profile so Verify needs no store lookup.
type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Since int64  `json:"since"`
	jwt.RegisteredClaims
}

func (c claims) principal() domain.Principal {
	return domain.Principal{
		UID:         c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		CreatedAt:   time.UnixMicro(c.Since).UTC(),
	}
}

func (p *Provider) sign(principal domain.Principal) (token, jti string, err error) {
	now := p.opts.Now()
	jti = uuid.NewString()
	c := claims{
		Email: principal.Email,
		Name:  principal.DisplayName,
		Since: principal.CreatedAt.UnixMicro(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.UID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.opts.TTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.opts.Secret)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

func (p *Provider) parse(token string) (*claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return p.opts.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.opts.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if c.Subject == "" || c.ID == "" {
		return nil, errors.New("token missing subject or id")
	}
	return &c, nil
}
