// Package tenant carries the resolved tenant scope of a request.
//
// The authorization layer resolves the scope exactly once, at the boundary
// (JWT claims for HTTP, flags for the CLI), and every query function takes
// an explicit tenant id that is checked against it. There is no global
// mutable tenant context.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// ErrScopeViolation means a caller asked for data outside its tenant scope.
// Fatal for a recompute pass; the pass aborts before any writes.
var ErrScopeViolation = errors.New("request is outside the caller's tenant scope")

// Scope identifies who is asking and which employee set they own.
type Scope struct {
	TenantID string
	Actor    string
}

// Authorize checks that tenantID belongs to this scope.
func (s Scope) Authorize(tenantID string) error {
	if tenantID == "" || tenantID != s.TenantID {
		return ErrScopeViolation
	}
	return nil
}

type ctxKey struct{}

// WithScope returns a context carrying an already-resolved scope.
// Used by the CLI and by tests.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext resolves the caller's scope. An explicitly injected scope wins;
// otherwise the JWT claims placed in the context by the auth middleware are
// used.
func FromContext(ctx context.Context) (Scope, error) {
	if s, ok := ctx.Value(ctxKey{}).(Scope); ok {
		return s, nil
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Scope{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return Scope{}, fmt.Errorf("tenant_id claim is missing or invalid")
	}

	actor, _ := claims["user_id"].(string)

	return Scope{TenantID: tenantID, Actor: actor}, nil
}
