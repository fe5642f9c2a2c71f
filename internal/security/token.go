package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidClaims  = errors.New("invalid token claims")
)

// SessionClaims is the payload the backend signs into a bearer token.
type SessionClaims struct {
	UserID string      `json:"id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// DecodeClaims reads the identity out of a bearer token without verifying its
// signature; the backend stays the authority on validity. Any token that does
// not match the claim schema is rejected.
func DecodeClaims(tokenStr string) (*SessionClaims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrMalformedToken
	}

	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if err := claims.validate(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *SessionClaims) validate() error {
	switch {
	case strings.TrimSpace(c.UserID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidClaims)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidClaims)
	case !c.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, c.Role)
	}
	return nil
}

func (c *SessionClaims) Summary() models.UserSummary {
	return models.UserSummary{
		ID:   c.UserID,
		Name: c.Name,
		Role: c.Role,
	}
}
