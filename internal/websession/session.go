package websession

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "console-session"
	upstreamKey = "upstream_session"

	flashSuccess = "flash_success"
	flashError   = "flash_error"
)

// ContextKey is where RequireAuth stores the upstream credential for
// handlers downstream.
const ContextKey = "upstream_session"

// Flash is a one-shot user notification carried across a redirect.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// Manager wraps the operator's browser session. The only durable datum is
// the opaque upstream session cookie value, which never reaches the
// operator's browser in the clear.
type Manager struct {
	store *sessions.CookieStore
}

// New creates a cookie-backed session store signed with secret.
func New(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// Upstream returns the stored backend credential, if any.
func (m *Manager) Upstream(r *http.Request) (string, bool) {
	session, _ := m.store.Get(r, sessionName)
	val, ok := session.Values[upstreamKey].(string)
	return val, ok && val != ""
}

// SetUpstream stores the backend credential after a successful login.
func (m *Manager) SetUpstream(w http.ResponseWriter, r *http.Request, value string) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[upstreamKey] = value
	return session.Save(r, w)
}

// Clear drops the stored credential. Flashes already queued survive so a
// logout notification can outlive the session it ends.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, upstreamKey)
	return session.Save(r, w)
}

// AddFlash queues a one-shot notification for the next page render.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	session, _ := m.store.Get(r, sessionName)
	key := flashSuccess
	if f.Kind == "error" {
		key = flashError
	}
	session.AddFlash(f.Message, key)
	_ = session.Save(r, w)
}

// ConsumeFlashes returns and clears all queued notifications.
func (m *Manager) ConsumeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := m.store.Get(r, sessionName)
	var out []Flash
	for _, v := range session.Flashes(flashSuccess) {
		if msg, ok := v.(string); ok {
			out = append(out, Flash{Kind: "success", Message: msg})
		}
	}
	for _, v := range session.Flashes(flashError) {
		if msg, ok := v.(string); ok {
			out = append(out, Flash{Kind: "error", Message: msg})
		}
	}
	if len(out) > 0 {
		_ = session.Save(r, w)
	}
	return out
}

// RequireAuth redirects to the login page when no upstream credential is
// stored, and otherwise exposes it to handlers via the gin context.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := m.Upstream(c.Request)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Set(ContextKey, val)
		c.Next()
	}
}
