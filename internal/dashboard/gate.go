package dashboard

import (
	"context"
	"errors"
	"fmt"

	"attendance-console/internal/apiclient"
)

// SessionGate checks the session against the backend before any dashboard
// data moves. It never caches: sessions expire independently of view state,
// so every load cycle re-verifies.
type SessionGate struct {
	api API
}

// NewSessionGate creates a gate over the given client.
func NewSessionGate(api API) *SessionGate {
	return &SessionGate{api: api}
}

// Verify performs one who-am-I call. Any failure, HTTP or transport, means
// the caller must leave the authenticated view; the gate draws no finer
// distinction.
func (g *SessionGate) Verify(ctx context.Context) error {
	if err := g.api.Me(ctx); err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	return nil
}

// isAuthFailure reports whether a data-fetch error means the session was
// rejected mid-cycle.
func isAuthFailure(err error) bool {
	var se *apiclient.StatusError
	return errors.As(err, &se) && se.Unauthorized()
}
