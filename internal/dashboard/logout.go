package dashboard

import "context"

// LogoutFlow terminates the session and moves the operator back to the
// unauthenticated entry point. It is user-triggered and independent of the
// load cycle.
type LogoutFlow struct {
	api      API
	navigate Navigator
	notify   Notifier
}

// NewLogoutFlow wires the flow to its injected capabilities.
func NewLogoutFlow(api API, navigate Navigator, notify Notifier) *LogoutFlow {
	return &LogoutFlow{api: api, navigate: navigate, notify: notify}
}

// Logout calls the termination endpoint. Success yields exactly one success
// notification and one navigation signal. Failure yields one error
// notification and leaves the current view where it is.
func (f *LogoutFlow) Logout(ctx context.Context) error {
	if err := f.api.Logout(ctx); err != nil {
		if f.notify != nil {
			f.notify.Error("Logout failed: " + err.Error())
		}
		return err
	}
	if f.notify != nil {
		f.notify.Success("Logged out")
	}
	if f.navigate != nil {
		f.navigate()
	}
	return nil
}
