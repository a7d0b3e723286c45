package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studentportal/internal/store"
)

const loggedInSentinel = "true"

var (
	ErrMissingCredentials = errors.New("please fill all fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidSession     = errors.New("invalid session token")
)

// Session is what the portal knows about the current visitor.
type Session struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserEmail  string `json:"userEmail,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Guard owns the session flag. Any non-empty email/password pair logs in;
// there is no credential check and the guard is not a security boundary.
type Guard struct {
	kv         store.KV
	issuer     string
	signingKey string
}

// NewGuard creates a guard. An empty signingKey disables session tokens.
func NewGuard(kv store.KV, issuer, signingKey string) *Guard {
	return &Guard{kv: kv, issuer: issuer, signingKey: signingKey}
}

// TokensEnabled reports whether requests must present a session token.
func (g *Guard) TokensEnabled() bool { return g.signingKey != "" }

// IsAuthenticated reports whether the session flag is set.
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	v, ok, err := g.kv.Get(ctx, store.KeyLoggedIn)
	return err == nil && ok && v == loggedInSentinel
}

// Current returns the stored session without a token.
func (g *Guard) Current(ctx context.Context) (Session, error) {
	if !g.IsAuthenticated(ctx) {
		return Session{}, nil
	}
	email, _, err := g.kv.Get(ctx, store.KeyEmail)
	if err != nil {
		return Session{}, fmt.Errorf("read session email: %w", err)
	}
	return Session{IsLoggedIn: true, UserEmail: email}, nil
}

// Email returns the logged in email, or "" when there is none.
func (g *Guard) Email(ctx context.Context) string {
	s, err := g.Current(ctx)
	if err != nil {
		return ""
	}
	return s.UserEmail
}

// Login sets the session flag and email.
func (g *Guard) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	if err := g.kv.Set(ctx, store.KeyLoggedIn, loggedInSentinel); err != nil {
		return Session{}, fmt.Errorf("store session flag: %w", err)
	}
	if err := g.kv.Set(ctx, store.KeyEmail, email); err != nil {
		return Session{}, fmt.Errorf("store session email: %w", err)
	}

	s := Session{IsLoggedIn: true, UserEmail: email}
	if g.TokensEnabled() {
		tok, err := Issue(email, g.issuer, g.signingKey)
		if err != nil {
			return Session{}, fmt.Errorf("issue session token: %w", err)
		}
		s.Token = tok
	}
	return s, nil
}

// Signup checks the form and writes nothing; the caller then logs in.
func (g *Guard) Signup(_ context.Context, email, password, confirm string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Logout clears the session entirely.
func (g *Guard) Logout(ctx context.Context) error {
	if err := g.kv.Remove(ctx, store.KeyLoggedIn); err != nil {
		return fmt.Errorf("clear session flag: %w", err)
	}
	if err := g.kv.Remove(ctx, store.KeyEmail); err != nil {
		return fmt.Errorf("clear session email: %w", err)
	}
	return nil
}

// Check validates a request against the session: the flag must be set and,
// when tokens are enabled, token must belong to the stored email.
func (g *Guard) Check(ctx context.Context, token string) error {
	s, err := g.Current(ctx)
	if err != nil {
		return err
	}
	if !s.IsLoggedIn {
		return ErrInvalidSession
	}
	if !g.TokensEnabled() {
		return nil
	}
	claims, err := Parse(token, g.signingKey, g.issuer)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Email != s.UserEmail {
		return ErrInvalidSession
	}
	return nil
}
