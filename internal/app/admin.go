package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brainquest/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// AuthTokenKey is the key the access token is stored under.
const AuthTokenKey = "authToken"

// TokenStore is the only durable state of the client. Get returns
// domain.ErrTokenNotFound for unknown keys.
type TokenStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.Token, error)
}

// AdminGate guards the admin screen behind a stored access token.
type AdminGate struct {
	auth     Authenticator
	store    TokenStore
	now      func() time.Time
	activity *Activity
}

func NewAdminGate(auth Authenticator, store TokenStore, activity *Activity) *AdminGate {
	return &AdminGate{auth: auth, store: store, now: time.Now, activity: activity}
}

// Login authenticates and stores the access token.
func (g *AdminGate) Login(ctx context.Context, username, password string) error {
	done := g.activity.Begin()
	token, err := g.auth.Login(ctx, username, password)
	done()
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("login failed")
		return err
	}
	if token.AccessToken == "" {
		return errors.New("access token is not a valid string")
	}
	if err := g.store.Set(ctx, AuthTokenKey, token.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	log.Info().Str("username", username).Msg("logged in")
	return nil
}

// Authorize returns the user the stored token was issued to. A missing,
// unreadable or expired token yields domain.ErrUnauthenticated; unreadable and
// expired tokens are removed. The signature is not verified, the API stays the
// authority for every privileged call.
func (g *AdminGate) Authorize(ctx context.Context) (string, error) {
	raw, err := g.store.Get(ctx, AuthTokenKey)
	if errors.Is(err, domain.ErrTokenNotFound) {
		log.Info().Msg("no auth token found")
		return "", domain.ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		log.Warn().Err(err).Msg("stored auth token is not a JWT")
		g.discard(ctx)
		return "", domain.ErrUnauthenticated
	}
	if claims.ExpiresAt != nil && !g.now().Before(claims.ExpiresAt.Time) {
		log.Info().Time("expired_at", claims.ExpiresAt.Time).Msg("stored auth token expired")
		g.discard(ctx)
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Logout forgets the stored token.
func (g *AdminGate) Logout(ctx context.Context) error {
	if err := g.store.Remove(ctx, AuthTokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (g *AdminGate) discard(ctx context.Context) {
	if err := g.store.Remove(ctx, AuthTokenKey); err != nil {
		log.Warn().Err(err).Msg("failed to remove stale token")
	}
}
