package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
	"github.com/kompu/storefront/internal/core/token"
)

type tokenCtxKey struct{}

// WithToken marks ctx as a request from a remote client carrying tok, which
// may be empty. The stored active token belongs to the in-process client and
// is never consulted for such a context.
func WithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, tok)
}

// tokenFrom reports the request token and whether ctx came from a remote
// client.
func tokenFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenCtxKey{}).(string)
	return tok, ok
}

// Session is the resolved current user together with the full user
// collection it was loaded from, so callers can mutate and save it.
type Session struct {
	Claims *token.Claims
	Users  []domain.User
	Index  int
}

// User returns a pointer into Users; edits are persisted by saving Users.
func (s *Session) User() *domain.User {
	return &s.Users[s.Index]
}

// Resolver derives the current user on every call from the token and the
// user collection. Nothing is cached.
type Resolver struct {
	tokens ports.TokenStore
	users  ports.UserRepository
	rec    ports.Recorder
	clock  func() time.Time
	log    zerolog.Logger
}

func NewResolver(tokens ports.TokenStore, users ports.UserRepository, rec ports.Recorder, log zerolog.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, rec: orNop(rec), clock: time.Now, log: log}
}

// Claims decodes the current token: the request token for remote clients,
// otherwise the stored active token. A malformed or expired token taken from
// the store is removed from it.
func (r *Resolver) Claims(ctx context.Context, op string) (*token.Claims, error) {
	tok, fromRequest := tokenFrom(ctx)
	if fromRequest && tok == "" {
		return nil, skip(r.rec, op, domain.SkipNoToken)
	}
	if !fromRequest {
		stored, ok, err := r.tokens.Active(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, skip(r.rec, op, domain.SkipNoToken)
		}
		tok = stored
	}

	claims, err := token.Decode(tok)
	if err != nil || claims.ID <= 0 {
		r.discard(ctx, fromRequest)
		return nil, skip(r.rec, op, domain.SkipTokenMalformed)
	}
	if !claims.Valid(r.clock()) {
		r.discard(ctx, fromRequest)
		return nil, skip(r.rec, op, domain.SkipTokenExpired)
	}
	return claims, nil
}

func (r *Resolver) discard(ctx context.Context, fromRequest bool) {
	if fromRequest {
		return
	}
	if err := r.tokens.Clear(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to clear stale token")
	}
}

// Current resolves the session for op.
func (r *Resolver) Current(ctx context.Context, op string) (*Session, error) {
	claims, err := r.Claims(ctx, op)
	if err != nil {
		return nil, err
	}

	users, ok, err := r.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, skip(r.rec, op, domain.SkipNoUserCollection)
	}

	idx := domain.FindUser(users, claims.ID)
	if idx < 0 {
		return nil, skip(r.rec, op, domain.SkipUserNotFound)
	}
	return &Session{Claims: claims, Users: users, Index: idx}, nil
}
