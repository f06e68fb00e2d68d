package google

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nirvanaflow/api/internal/models"
	"go.uber.org/zap"
)

const (
	// GmailQuery restricts the fetch to the past two days, skipping spam
	// and trash
	GmailQuery = "newer_than:2d -in:spam -in:trash"
	// GmailMaxListResults caps the message list request
	GmailMaxListResults = 20
	// GmailMaxDetailFetches caps the per-message detail fetches
	GmailMaxDetailFetches = 10
)

type gmailMessageList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gmailMessage struct {
	ID           string   `json:"id"`
	LabelIDs     []string `json:"labelIds"`
	Snippet      string   `json:"snippet"`
	InternalDate string   `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

// FetchRecentMessages lists recent messages and fetches details for the
// first few. A message whose detail fetch fails is skipped so one bad
// message cannot sink the whole sync.
func (c *Client) FetchRecentMessages(ctx context.Context) ([]*models.EmailMessage, error) {
	listURL := fmt.Sprintf("%s/users/me/messages?q=%s&maxResults=%d",
		c.gmailBaseURL, url.QueryEscape(GmailQuery), GmailMaxListResults)

	var list gmailMessageList
	if err := c.getJSON(ctx, listURL, &list); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if len(list.Messages) == 0 {
		return nil, nil
	}

	limit := len(list.Messages)
	if limit > GmailMaxDetailFetches {
		limit = GmailMaxDetailFetches
	}

	messages := make([]*models.EmailMessage, 0, limit)
	for _, ref := range list.Messages[:limit] {
		detailURL := fmt.Sprintf("%s/users/me/messages/%s?format=full", c.gmailBaseURL, url.PathEscape(ref.ID))

		var detail gmailMessage
		if err := c.getJSON(ctx, detailURL, &detail); err != nil {
			if IsAuthError(err) || IsRateLimitError(err) {
				return nil, err
			}
			c.logger.Warn("gmail_detail_fetch_failed",
				zap.String("message_id", ref.ID),
				zap.Error(err),
			)
			continue
		}

		messages = append(messages, transformGmailMessage(&detail))
	}

	return messages, nil
}

func transformGmailMessage(msg *gmailMessage) *models.EmailMessage {
	out := &models.EmailMessage{
		ID:      msg.ID,
		Snippet: msg.Snippet,
		Labels:  msg.LabelIDs,
	}

	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			out.From = h.Value
		case "Subject":
			out.Subject = h.Value
		}
	}

	// internalDate is epoch milliseconds as a string
	if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil {
		out.ReceivedAt = time.UnixMilli(ms)
	}

	return out
}
