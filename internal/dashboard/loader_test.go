package dashboard

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"attendance-console/internal/apiclient"
)

type fakeAPI struct {
	mu         sync.Mutex
	meErr      error
	meCalls    int
	stats      apiclient.Stats
	statsErr   error
	statsCalls int
	weekly     []apiclient.DailyCount
	weeklyErr  error
	attendance func(dateKey string) ([]apiclient.RawRecord, error)
	attCalls   []string
	logoutErr  error
}

func (f *fakeAPI) Me(ctx context.Context) error {
	f.mu.Lock()
	f.meCalls++
	f.mu.Unlock()
	return f.meErr
}

func (f *fakeAPI) Stats(ctx context.Context) (apiclient.Stats, error) {
	f.mu.Lock()
	f.statsCalls++
	f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakeAPI) WeeklyStats(ctx context.Context) ([]apiclient.DailyCount, error) {
	return f.weekly, f.weeklyErr
}

func (f *fakeAPI) Attendance(ctx context.Context, dateKey string) ([]apiclient.RawRecord, error) {
	f.mu.Lock()
	f.attCalls = append(f.attCalls, dateKey)
	fn := f.attendance
	f.mu.Unlock()
	if fn != nil {
		return fn(dateKey)
	}
	return nil, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error { return f.logoutErr }

func (f *fakeAPI) counts() (me, stats, att int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls, f.statsCalls, len(f.attCalls)
}

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func waitState(t *testing.T, l *Loader, cond func(LoadState) bool) LoadState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-l.Updates():
			if cond(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func TestLoaderHappyPath(t *testing.T) {
	f := &fakeAPI{
		stats:  apiclient.Stats{TotalStudents: 120, MarkedToday: 45, AttendanceRateToday: 37.5},
		weekly: []apiclient.DailyCount{{Date: "2024-05-01", Count: 45}},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return []apiclient.RawRecord{
				{ID: "1", StudentID: "S1", Name: "Ann", Timestamp: "2024-05-01T09:02:00Z"},
			}, nil
		},
	}
	l := NewLoader(f, func() { t.Error("unexpected navigation") })

	l.Start(context.Background(), localDate(2024, time.May, 1))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase == Loaded })
	if st.Stats == nil || st.Stats.AttendanceRateToday != 37.5 {
		t.Fatalf("stats not published: %+v", st.Stats)
	}
	if len(st.Records) != 1 || st.Records[0].DisplayName != "Ann" || st.Records[0].DisplayTime == "" {
		t.Fatalf("records not normalized: %+v", st.Records)
	}
	if st.Notice != "" {
		t.Fatalf("unexpected notice %q", st.Notice)
	}
	if len(st.Weekly) != 1 {
		t.Fatalf("weekly series missing: %+v", st.Weekly)
	}
}

func TestLoaderEmptyDayIsLoadedNotFailed(t *testing.T) {
	f := &fakeAPI{
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return []apiclient.RawRecord{}, nil
		},
	}
	l := NewLoader(f, nil)
	l.Start(context.Background(), localDate(2024, time.May, 1))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase != Loading })
	if st.Phase != Loaded {
		t.Fatalf("phase = %v, want Loaded", st.Phase)
	}
	if len(st.Records) != 0 {
		t.Fatalf("records = %v, want empty", st.Records)
	}
	if v := Project(st); !v.NoRecords {
		t.Fatal("projector must flag the no-records placeholder")
	}
}

func TestLoaderAuthFailureNavigatesWithoutError(t *testing.T) {
	f := &fakeAPI{meErr: &apiclient.StatusError{Op: "me", Code: http.StatusUnauthorized}}

	var mu sync.Mutex
	navs := 0
	l := NewLoader(f, func() { mu.Lock(); navs++; mu.Unlock() })

	l.Start(context.Background(), localDate(2024, time.May, 1))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := navs
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("navigation signal never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Give a stray second signal a chance to show up.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	n := navs
	mu.Unlock()
	if n != 1 {
		t.Fatalf("navigation signals = %d, want exactly 1", n)
	}

	_, statsCalls, attCalls := f.counts()
	if statsCalls != 0 || attCalls != 0 {
		t.Fatalf("data fetched after session rejection: stats=%d attendance=%d", statsCalls, attCalls)
	}
	if st := l.Current(); st.Phase == Failed {
		t.Fatal("auth failure must not surface as an inline error state")
	}
}

func TestLoaderLatestDateWins(t *testing.T) {
	release := make(chan struct{})
	f := &fakeAPI{
		stats: apiclient.Stats{TotalStudents: 1},
	}
	f.attendance = func(key string) ([]apiclient.RawRecord, error) {
		if key == "2024-05-01" {
			<-release
			return []apiclient.RawRecord{{ID: "1", StudentID: "S1", Name: "Stale", AttendanceTime: "09:00:00"}}, nil
		}
		return []apiclient.RawRecord{{ID: "2", StudentID: "S2", Name: "Fresh", AttendanceTime: "10:00:00"}}, nil
	}
	l := NewLoader(f, nil)
	ctx := context.Background()

	l.Start(ctx, localDate(2024, time.May, 1))
	l.SetDate(ctx, localDate(2024, time.May, 2))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase == Loaded })
	if len(st.Records) != 1 || st.Records[0].DisplayName != "Fresh" {
		t.Fatalf("published records %+v, want the latest date's rows", st.Records)
	}

	// Let the superseded cycle finish; its result must be discarded.
	close(release)
	select {
	case st := <-l.Updates():
		t.Fatalf("stale cycle published state: %+v", st)
	case <-time.After(150 * time.Millisecond):
	}
	if cur := l.Current(); len(cur.Records) != 1 || cur.Records[0].DisplayName != "Fresh" {
		t.Fatalf("stale cycle overwrote state: %+v", cur.Records)
	}
}

// Stats are deliberately mount-scoped: a date change re-runs the gate and the
// attendance fetch but keeps the existing stats snapshot.
func TestLoaderStatsNotRefetchedOnDateChange(t *testing.T) {
	f := &fakeAPI{
		stats: apiclient.Stats{TotalStudents: 10, MarkedToday: 3, AttendanceRateToday: 30},
	}
	l := NewLoader(f, nil)
	ctx := context.Background()

	l.Start(ctx, localDate(2024, time.May, 1))
	waitState(t, l, func(s LoadState) bool { return s.Phase == Loaded })

	l.SetDate(ctx, localDate(2024, time.May, 2))
	st := waitState(t, l, func(s LoadState) bool {
		return s.Phase == Loaded && s.Date.Day() == 2
	})

	me, statsCalls, attCalls := f.counts()
	if statsCalls != 1 {
		t.Fatalf("stats fetched %d times, want once at mount", statsCalls)
	}
	if me != 2 || attCalls != 2 {
		t.Fatalf("gate/attendance must run per cycle: me=%d attendance=%d", me, attCalls)
	}
	if st.Stats == nil || st.Stats.TotalStudents != 10 {
		t.Fatalf("stats snapshot must carry across date changes, got %+v", st.Stats)
	}
}

func TestLoaderStatsFailureIsNonFatal(t *testing.T) {
	f := &fakeAPI{
		statsErr: &apiclient.StatusError{Op: "stats", Code: http.StatusInternalServerError},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return []apiclient.RawRecord{{ID: "1", StudentID: "S1", Name: "Ann", AttendanceTime: "09:00:00"}}, nil
		},
	}
	l := NewLoader(f, nil)
	l.Start(context.Background(), localDate(2024, time.May, 1))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase != Loading })
	if st.Phase != Loaded {
		t.Fatalf("phase = %v, want Loaded despite stats failure", st.Phase)
	}
	if len(st.Records) != 1 {
		t.Fatalf("attendance data lost: %+v", st.Records)
	}
	if st.Stats != nil {
		t.Fatalf("stats should be absent, got %+v", st.Stats)
	}
	if st.Notice == "" {
		t.Fatal("partial failure must surface a notice")
	}
}

func TestLoaderAttendanceFailureKeepsStats(t *testing.T) {
	f := &fakeAPI{
		stats: apiclient.Stats{TotalStudents: 10},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return nil, &apiclient.StatusError{Op: "attendance", Code: http.StatusBadGateway}
		},
	}
	l := NewLoader(f, nil)
	l.Start(context.Background(), localDate(2024, time.May, 1))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase != Loading })
	if st.Phase != Loaded {
		t.Fatalf("phase = %v, want Loaded despite attendance failure", st.Phase)
	}
	if st.Stats == nil || st.Stats.TotalStudents != 10 {
		t.Fatalf("stats lost: %+v", st.Stats)
	}
	if st.Notice == "" || len(st.Records) != 0 {
		t.Fatalf("want empty records plus notice, got records=%v notice=%q", st.Records, st.Notice)
	}
}

func TestLoaderBothFetchesFailing(t *testing.T) {
	f := &fakeAPI{
		statsErr: &apiclient.StatusError{Op: "stats", Code: http.StatusInternalServerError},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return nil, &apiclient.StatusError{Op: "attendance", Code: http.StatusInternalServerError}
		},
	}
	l := NewLoader(f, nil)
	l.Start(context.Background(), localDate(2024, time.May, 1))

	st := waitState(t, l, func(s LoadState) bool { return s.Phase != Loading })
	if st.Phase != Failed {
		t.Fatalf("phase = %v, want Failed when nothing loaded", st.Phase)
	}
	if st.Err == "" {
		t.Fatal("Failed state must carry a message")
	}
}

func TestLoaderMidCycleSessionExpiryNavigates(t *testing.T) {
	// The gate passes, then the data fetches come back 401: still a redirect,
	// never an inline error.
	f := &fakeAPI{
		statsErr: &apiclient.StatusError{Op: "stats", Code: http.StatusUnauthorized},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return nil, &apiclient.StatusError{Op: "attendance", Code: http.StatusUnauthorized}
		},
	}
	var mu sync.Mutex
	navs := 0
	l := NewLoader(f, func() { mu.Lock(); navs++; mu.Unlock() })
	l.Start(context.Background(), localDate(2024, time.May, 1))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := navs
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected a navigation signal")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st := l.Current(); st.Phase == Failed {
		t.Fatal("mid-cycle auth failure must not render as Failed")
	}
}

func TestRunOnce(t *testing.T) {
	f := &fakeAPI{
		stats: apiclient.Stats{TotalStudents: 2},
		attendance: func(string) ([]apiclient.RawRecord, error) {
			return []apiclient.RawRecord{{ID: "1", StudentID: "S1", Name: "Ann", AttendanceTime: "09:00:00"}}, nil
		},
	}
	st, authFailed := RunOnce(context.Background(), f, localDate(2024, time.May, 1))
	if authFailed {
		t.Fatal("unexpected auth failure")
	}
	if st.Phase != Loaded || len(st.Records) != 1 || st.Stats == nil {
		t.Fatalf("unexpected state %+v", st)
	}

	f.meErr = &apiclient.StatusError{Op: "me", Code: http.StatusUnauthorized}
	if _, authFailed := RunOnce(context.Background(), f, localDate(2024, time.May, 1)); !authFailed {
		t.Fatal("rejected session must report authFailed")
	}
}
