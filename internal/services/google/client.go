package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultGmailBaseURL is the Gmail REST API base URL
	DefaultGmailBaseURL = "https://gmail.googleapis.com/gmail/v1"
	// DefaultCalendarBaseURL is the Calendar REST API base URL
	DefaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 15 * time.Second

	maxErrorBodyBytes = 4096
)

// Client talks to the Gmail and Calendar APIs on behalf of one user. The
// underlying HTTP client refreshes the OAuth token transparently; callers
// persist the refreshed token via CurrentToken after a sync.
type Client struct {
	httpClient      *http.Client
	tokenSource     oauth2.TokenSource
	gmailBaseURL    string
	calendarBaseURL string
	logger          *zap.Logger
}

// NewClient creates a client from the app's OAuth config and the user's
// stored token
func NewClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token, logger *zap.Logger) *Client {
	ts := conf.TokenSource(ctx, token)
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = DefaultTimeout

	c := newClientWithHTTP(httpClient, logger)
	c.tokenSource = ts
	return c
}

// NewClientWithHTTP creates a client over a preconfigured HTTP client and
// base URLs. Used in tests to point at a local server.
func NewClientWithHTTP(httpClient *http.Client, gmailBaseURL, calendarBaseURL string, logger *zap.Logger) *Client {
	c := newClientWithHTTP(httpClient, logger)
	if gmailBaseURL != "" {
		c.gmailBaseURL = gmailBaseURL
	}
	if calendarBaseURL != "" {
		c.calendarBaseURL = calendarBaseURL
	}
	return c
}

func newClientWithHTTP(httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:      httpClient,
		gmailBaseURL:    DefaultGmailBaseURL,
		calendarBaseURL: DefaultCalendarBaseURL,
		logger:          logger,
	}
}

// CurrentToken returns the token currently held by the client, including
// any refresh that happened during API calls. Returns nil when the client
// was built without a token source.
func (c *Client) CurrentToken() (*oauth2.Token, error) {
	if c.tokenSource == nil {
		return nil, nil
	}
	return c.tokenSource.Token()
}

// getJSON performs a GET request and decodes the JSON response into out,
// mapping auth and throttling statuses to typed errors.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, readErrorBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode google api response: %w", err)
	}

	return nil
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}
