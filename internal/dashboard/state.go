package dashboard

import (
	"context"
	"time"

	"attendance-console/internal/apiclient"
)

// API is the slice of the backend client a load cycle needs.
type API interface {
	Me(ctx context.Context) error
	Stats(ctx context.Context) (apiclient.Stats, error)
	WeeklyStats(ctx context.Context) ([]apiclient.DailyCount, error)
	Attendance(ctx context.Context, dateKey string) ([]apiclient.RawRecord, error)
	Logout(ctx context.Context) error
}

// Navigator is the injected "leave this view" capability. The pipeline calls
// it with no arguments; the host decides where unauthenticated users land.
type Navigator func()

// Notifier receives user-visible notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Phase tags the active LoadState variant.
type Phase int

const (
	// Loading means a cycle is in flight and nothing is displayable yet.
	Loading Phase = iota
	// Loaded means the last cycle produced displayable data.
	Loaded
	// Failed means the last cycle failed for a non-auth reason.
	Failed
)

// LoadState is the single published view model. Exactly one phase is active;
// fields outside the active phase are zero. Stats stays nil until the first
// successful stats fetch. Notice carries a non-fatal partial-failure message
// alongside Loaded data.
type LoadState struct {
	Phase   Phase
	Date    time.Time
	Stats   *apiclient.Stats
	Weekly  []apiclient.DailyCount
	Records []Record
	Notice  string
	Err     string
}
