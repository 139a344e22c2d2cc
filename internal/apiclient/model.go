package apiclient

import (
	"bytes"
	"encoding/json"
)

// Stats is the aggregate attendance snapshot. It is replaced wholesale on
// each successful fetch.
type Stats struct {
	TotalStudents          int     `json:"total_students"`
	MarkedToday            int     `json:"marked_today"`
	AttendanceRateToday    float64 `json:"attendance_rate_today"`
	TotalAttendanceRecords int     `json:"total_attendance_records"`
}

// DailyCount is one day of the weekly attendance series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RawRecord is an attendance row as the backend sends it. Field presence
// varies by endpoint version: exactly one of student_name/name is expected,
// attendance_time may be absent, timestamp is the ISO event time.
type RawRecord struct {
	ID             FlexID `json:"id"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	Name           string `json:"name"`
	Timestamp      string `json:"timestamp"`
	AttendanceTime string `json:"attendance_time"`
}

// FlexID decodes a record identifier sent as either a JSON number or string.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}
