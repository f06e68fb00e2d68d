package models

import "time"

// CalendarEntry is a provider-independent view of an upcoming calendar event.
// Entries are fetched on demand and offered to the user for import; only
// imported entries become Events.
type CalendarEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}
