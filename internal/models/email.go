package models

import "time"

// Gmail label IDs consulted by the importance scorer.
const (
	LabelUnread     = "UNREAD"
	LabelStarred    = "STARRED"
	LabelSpam       = "SPAM"
	LabelPromotions = "CATEGORY_PROMOTIONS"
)

// EmailMessage is a read-only view of a fetched Gmail message. It is never
// persisted or mutated; scoring happens fresh on every sync request.
type EmailMessage struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Snippet    string    `json:"snippet"`
	Labels     []string  `json:"labels"`
	ReceivedAt time.Time `json:"received_at"`
}

// HasLabel reports whether the message carries the given Gmail label.
func (m *EmailMessage) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsUnread reports whether the message carries the UNREAD label.
func (m *EmailMessage) IsUnread() bool {
	return m.HasLabel(LabelUnread)
}
