package domain

// ExportRow is a single row in a session export.
// It is a flat, denormalized view: one row per activity, with the day fields
// repeated for every activity of that day. Days with no activities yield one
// row with empty activity fields.
type ExportRow struct {
	// Day fields, repeated for every activity of the day.
	DayNumber int // 1-based
	DayTitle  string

	// Activity fields, empty when the day has no activities.
	Time        string
	Activity    string
	Description string
	Emoji       string
}
