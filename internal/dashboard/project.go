package dashboard

import "attendance-console/internal/apiclient"

// ViewMode selects which of the three mutually exclusive renderings applies.
type ViewMode int

const (
	ViewLoading ViewMode = iota
	ViewError
	ViewPopulated
)

// View is the render instruction derived from a LoadState. It carries no
// behavior; the web layer feeds it straight into a template.
type View struct {
	Mode      ViewMode
	Error     string
	Notice    string
	Stats     *apiclient.Stats
	Weekly    []apiclient.DailyCount
	Rows      []Record
	NoRecords bool
	DateKey   string
	DateLabel string
}

// IsLoading reports the loading-placeholder rendering.
func (v View) IsLoading() bool { return v.Mode == ViewLoading }

// IsError reports the inline-error rendering.
func (v View) IsError() bool { return v.Mode == ViewError }

// IsPopulated reports the stats-and-table rendering.
func (v View) IsPopulated() bool { return v.Mode == ViewPopulated }

// Project maps a published state to exactly one of loading, inline error, or
// populated. Auth failures never reach here; they navigate away instead.
func Project(st LoadState) View {
	v := View{
		DateKey:   APIKey(st.Date),
		DateLabel: Display(st.Date),
	}
	switch st.Phase {
	case Loading:
		v.Mode = ViewLoading
	case Failed:
		v.Mode = ViewError
		v.Error = st.Err
	case Loaded:
		v.Mode = ViewPopulated
		v.Notice = st.Notice
		v.Stats = st.Stats
		v.Weekly = st.Weekly
		v.Rows = st.Records
		v.NoRecords = len(st.Records) == 0
	}
	return v
}
