package assistant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "brightpath/pkg/domain-errors"
)

// SessionClaims carries the realtime session configuration inside the
// short-lived credential handed to the client.
type SessionClaims struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	jwt.RegisteredClaims
}

// Credential is the issued session token plus what the client needs to open
// the realtime connection.
type Credential struct {
	Token     string    `json:"token"`
	Model     string    `json:"model"`
	Voice     string    `json:"voice"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenIssuer mints ephemeral session tokens for voice and chat sessions.
type TokenIssuer struct {
	signingKey []byte
	model      string
	voice      string
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenIssuer(signingKey, model, voice string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		model:      model,
		voice:      voice,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue mints a session credential. Tokens are single-session and short-lived;
// the client requests a fresh one per connection.
func (i *TokenIssuer) Issue(_ context.Context) (*Credential, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := i.now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Model: i.model,
		Voice: i.voice,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "brightpath",
			ID:        hex.EncodeToString(b),
		},
	})
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return &Credential{Token: signed, Model: i.model, Voice: i.voice, ExpiresAt: expiresAt}, nil
}

// Validate checks signature, algorithm and expiry on a session token.
func (i *TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid session token")
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid session token")
	}
	return claims, nil
}
