package google

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nirvanaflow/api/internal/models"
)

// CalendarMaxResults caps the number of upcoming events fetched
const CalendarMaxResults = 3

type calendarEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type calendarEventList struct {
	Items []struct {
		ID          string            `json:"id"`
		Summary     string            `json:"summary"`
		Description string            `json:"description"`
		Start       calendarEventTime `json:"start"`
		End         calendarEventTime `json:"end"`
	} `json:"items"`
}

// FetchUpcomingEvents returns the next few events from the user's primary
// calendar, starting from now.
func (c *Client) FetchUpcomingEvents(ctx context.Context, now time.Time) ([]*models.CalendarEntry, error) {
	query := url.Values{}
	query.Set("timeMin", now.UTC().Format(time.RFC3339))
	query.Set("maxResults", fmt.Sprintf("%d", CalendarMaxResults))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	listURL := fmt.Sprintf("%s/calendars/primary/events?%s", c.calendarBaseURL, query.Encode())

	var list calendarEventList
	if err := c.getJSON(ctx, listURL, &list); err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	entries := make([]*models.CalendarEntry, 0, len(list.Items))
	for _, item := range list.Items {
		entries = append(entries, &models.CalendarEntry{
			ID:          item.ID,
			Title:       item.Summary,
			Description: item.Description,
			Start:       parseEventTime(item.Start),
			End:         parseEventTime(item.End),
		})
	}

	return entries, nil
}

// parseEventTime handles both timed events (dateTime) and all-day events
// (date only).
func parseEventTime(t calendarEventTime) *time.Time {
	if t.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return &ts
		}
	}
	if t.Date != "" {
		if ts, err := time.Parse("2006-01-02", t.Date); err == nil {
			return &ts
		}
	}
	return nil
}
