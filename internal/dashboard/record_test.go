package dashboard

import (
	"regexp"
	"testing"

	"attendance-console/internal/apiclient"
)

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

func TestNormalizeNamePrecedence(t *testing.T) {
	raws := []apiclient.RawRecord{
		{ID: "1", StudentID: "S1", StudentName: "Ann Joined", Name: "Ann Raw", AttendanceTime: "09:00:00"},
		{ID: "2", StudentID: "S2", Name: "Ben", AttendanceTime: "09:01:00"},
		{ID: "3", StudentID: "S3", AttendanceTime: "09:02:00"},
	}
	recs := Normalize(raws)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].DisplayName != "Ann Joined" {
		t.Errorf("student_name must win: got %q", recs[0].DisplayName)
	}
	if recs[1].DisplayName != "Ben" {
		t.Errorf("name fallback: got %q", recs[1].DisplayName)
	}
	if recs[2].DisplayName != "" {
		t.Errorf("no name sources must yield empty string, got %q", recs[2].DisplayName)
	}
}

func TestNormalizeAttendanceTimeVerbatim(t *testing.T) {
	raws := []apiclient.RawRecord{
		{ID: "1", StudentID: "S1", Name: "Ann", AttendanceTime: "9:02 AM", Timestamp: "not-a-timestamp"},
	}
	recs := Normalize(raws)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].DisplayTime != "9:02 AM" {
		t.Fatalf("attendance_time must pass through verbatim, got %q", recs[0].DisplayTime)
	}
}

func TestNormalizeTimeFromTimestamp(t *testing.T) {
	raws := []apiclient.RawRecord{
		{ID: "1", StudentID: "S1", Name: "Ann", Timestamp: "2024-05-01T09:02:00Z"},
		{ID: "2", StudentID: "S2", Name: "Ben", Timestamp: "2024-05-01T09:03:00"},
	}
	recs := Normalize(raws)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if r.DisplayTime == "" || !clockPattern.MatchString(r.DisplayTime) {
			t.Errorf("record %s: derived time %q is not a clock time", r.ID, r.DisplayTime)
		}
	}
}

func TestNormalizeDropsRecordsWithNoTimeSource(t *testing.T) {
	raws := []apiclient.RawRecord{
		{ID: "1", StudentID: "S1", Name: "Ann", AttendanceTime: "09:00:00"},
		{ID: "2", StudentID: "S2", Name: "Ben"},
		{ID: "3", StudentID: "S3", Name: "Cal", Timestamp: "garbage"},
		{ID: "4", StudentID: "S4", Name: "Dee", Timestamp: "2024-05-01T09:05:00Z"},
	}
	recs := Normalize(raws)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (malformed rows dropped, not the batch)", len(recs))
	}
	if recs[0].ID != "1" || recs[1].ID != "4" {
		t.Fatalf("order not preserved: %v", []string{recs[0].ID, recs[1].ID})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if recs := Normalize(nil); len(recs) != 0 {
		t.Fatalf("got %d records, want 0", len(recs))
	}
}
