package dashboard

import (
	"log"
	"time"

	"attendance-console/internal/apiclient"
)

// Record is the canonical, display-ready form of one attendance event.
// DisplayTime is never empty; DisplayName may be empty when the backend sent
// no name at all.
type Record struct {
	ID          string
	StudentID   string
	DisplayName string
	DisplayTime string
}

// timestampLayouts covers the ISO forms the backend emits, with and without
// a zone offset.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Normalize maps raw rows to canonical records, preserving order. A row with
// no preformatted attendance_time and no parseable timestamp has no
// displayable time source; it is dropped with a logged warning rather than
// corrupting the batch.
func Normalize(raws []apiclient.RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := normalizeOne(raw)
		if !ok {
			log.Printf("dropping attendance record %q: no usable time source", raw.ID)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func normalizeOne(raw apiclient.RawRecord) (Record, bool) {
	name := raw.StudentName
	if name == "" {
		name = raw.Name
	}

	display := raw.AttendanceTime
	if display == "" {
		t, ok := parseTimestamp(raw.Timestamp)
		if !ok {
			return Record{}, false
		}
		display = t.Format("15:04:05")
	}

	return Record{
		ID:          string(raw.ID),
		StudentID:   raw.StudentID,
		DisplayName: name,
		DisplayTime: display,
	}, true
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Local(), true
		}
	}
	return time.Time{}, false
}
