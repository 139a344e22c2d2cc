package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"attendance-console/internal/apiclient"
)

// Loader owns the selected date and the published LoadState. It runs one
// load cycle per date selection: session gate, then stats and attendance
// fetches, then normalization. Cycles are numbered by a generation counter;
// a superseded cycle's result, including its navigation signal, is discarded
// so the latest-initiated cycle always wins regardless of completion order.
type Loader struct {
	api      API
	gate     *SessionGate
	navigate Navigator

	mu         sync.Mutex
	gen        uint64
	cancel     context.CancelFunc
	navigated  bool
	lastStats  *apiclient.Stats
	lastWeekly []apiclient.DailyCount
	state      LoadState

	updates chan LoadState
}

// NewLoader creates a loader publishing to the given navigation capability.
func NewLoader(api API, navigate Navigator) *Loader {
	return &Loader{
		api:      api,
		gate:     NewSessionGate(api),
		navigate: navigate,
		updates:  make(chan LoadState, 16),
	}
}

// Start runs the mount cycle for the initial date. Stats are fetched here
// and only here; date changes re-scope attendance alone.
func (l *Loader) Start(ctx context.Context, date time.Time) {
	l.begin(ctx, date, true)
}

// SetDate re-triggers the cycle for a newly selected date, superseding any
// cycle still in flight.
func (l *Loader) SetDate(ctx context.Context, date time.Time) {
	l.begin(ctx, date, false)
}

// Updates streams published states. The channel is bounded; when a consumer
// lags, older states are dropped in favor of newer ones.
func (l *Loader) Updates() <-chan LoadState {
	return l.updates
}

// Current returns the most recently published state.
func (l *Loader) Current() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader) begin(parent context.Context, date time.Time, withStats bool) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	prevStats, prevWeekly := l.lastStats, l.lastWeekly
	l.mu.Unlock()

	l.publish(gen, LoadState{Phase: Loading, Date: date})

	go func() {
		defer cancel()
		l.run(ctx, gen, date, withStats, prevStats, prevWeekly)
	}()
}

func (l *Loader) run(ctx context.Context, gen uint64, date time.Time, withStats bool, prevStats *apiclient.Stats, prevWeekly []apiclient.DailyCount) {
	if err := l.gate.Verify(ctx); err != nil {
		l.redirect(gen)
		return
	}

	st, authFailed := fetchCycle(ctx, l.api, date, withStats, prevStats, prevWeekly)
	if authFailed {
		l.redirect(gen)
		return
	}

	if l.publish(gen, st) && st.Phase == Loaded && st.Stats != nil {
		l.mu.Lock()
		l.lastStats = st.Stats
		l.lastWeekly = st.Weekly
		l.mu.Unlock()
	}
}

// fetchCycle performs the data half of one cycle, after the gate has passed.
// The stats and attendance fetches are independent: one failing does not
// blank out what the other loaded. Both failing yields Failed; a single
// failure yields Loaded with the surviving portion and a non-fatal notice.
func fetchCycle(ctx context.Context, api API, date time.Time, withStats bool, prevStats *apiclient.Stats, prevWeekly []apiclient.DailyCount) (LoadState, bool) {
	var (
		wg       sync.WaitGroup
		stats    = prevStats
		weekly   = prevWeekly
		statsErr error
		records  []Record
		attErr   error
	)

	if withStats {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := api.Stats(ctx)
			if err != nil {
				statsErr = err
				return
			}
			stats = &s
			wk, err := api.WeeklyStats(ctx)
			if err != nil {
				log.Printf("weekly stats fetch failed: %v", err)
				return
			}
			weekly = wk
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		raws, err := api.Attendance(ctx, APIKey(date))
		if err != nil {
			attErr = err
			return
		}
		records = Normalize(raws)
	}()

	wg.Wait()

	if isAuthFailure(statsErr) || isAuthFailure(attErr) {
		return LoadState{}, true
	}

	if statsErr != nil && attErr != nil {
		return LoadState{Phase: Failed, Date: date, Err: attErr.Error()}, false
	}

	st := LoadState{Phase: Loaded, Date: date, Stats: stats, Weekly: weekly, Records: records}
	switch {
	case statsErr != nil:
		st.Notice = "stats unavailable: " + statsErr.Error()
	case attErr != nil:
		st.Notice = "attendance unavailable: " + attErr.Error()
		st.Records = nil
	}
	return st, false
}

// RunOnce executes a single request-scoped cycle: gate, fetch, normalize.
// The second result is true when the session was rejected and the caller
// must navigate to the unauthenticated entry point instead of rendering.
func RunOnce(ctx context.Context, api API, date time.Time) (LoadState, bool) {
	if err := NewSessionGate(api).Verify(ctx); err != nil {
		return LoadState{}, true
	}
	return fetchCycle(ctx, api, date, true, nil, nil)
}

// publish installs st as the current state if the cycle is still current.
func (l *Loader) publish(gen uint64, st LoadState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.state = st
	select {
	case l.updates <- st:
	default:
		// Consumer is behind: sacrifice the oldest buffered state.
		select {
		case <-l.updates:
		default:
		}
		select {
		case l.updates <- st:
		default:
		}
	}
	return true
}

// redirect fires the navigation capability once, and only for the cycle
// that is still current. Stale cycles must not navigate the operator away.
func (l *Loader) redirect(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || l.navigated {
		l.mu.Unlock()
		return
	}
	l.navigated = true
	nav := l.navigate
	l.mu.Unlock()
	if nav != nil {
		nav()
	}
}
