// Package auth validates bearer tokens issued by the identity frontend.
// Tokens only establish identity; plan and role always come from the
// profile store afterwards.
package auth

import (
	"errors"
	"strings"

	"github.com/copyadhq/copyad/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("missing or invalid credentials")
	ErrNotReady     = errors.New("auth secret is not configured")
)

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID string
	Email  string
}

type Verifier struct {
	secret []byte
}

func NewVerifier(cfg config.Config) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(cfg.AuthJWTSecret))}
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verify parses and validates an HS256 token and returns the identity.
// The subject claim is the user id.
func (v *Verifier) Verify(rawToken string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrNotReady
	}
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrUnauthorized
	}

	var parsed claims
	token, err := jwt.ParseWithClaims(rawToken, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: userID, Email: strings.TrimSpace(parsed.Email)}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
