package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nirvanaflow/api/internal/middleware"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/response"
	"github.com/nirvanaflow/api/internal/services/google"
	"github.com/nirvanaflow/api/internal/services/mailrank"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// MailSyncInterval is how long the UI should wait before polling again
const MailSyncInterval = 5 * time.Minute

// GoogleSyncClient is the per-user Google API surface the sync endpoints use
type GoogleSyncClient interface {
	FetchRecentMessages(ctx context.Context) ([]*models.EmailMessage, error)
	FetchUpcomingEvents(ctx context.Context, now time.Time) ([]*models.CalendarEntry, error)
	CurrentToken() (*oauth2.Token, error)
}

// GoogleClientFactory builds a sync client from a user's stored tokens
type GoogleClientFactory func(ctx context.Context, user *models.User) GoogleSyncClient

// TokenStore persists refreshed Google tokens
type TokenStore interface {
	UpdateGoogleTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken *string, expiry *time.Time) error
}

// SyncHandler handles calendar and mail sync requests
type SyncHandler struct {
	clients  GoogleClientFactory
	tokens   TokenStore
	resolver *mailrank.ConfigResolver
	now      func() time.Time
	logger   *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(clients GoogleClientFactory, tokens TokenStore, resolver *mailrank.ConfigResolver, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		clients:  clients,
		tokens:   tokens,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

// RegisterRoutes registers sync routes on the given router
// The router should already have the /sync prefix
func (h *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/mail", h.SyncMail).Methods("GET")
	r.HandleFunc("/calendar", h.SyncCalendar).Methods("GET")
}

// RankedEmail is the trimmed view of the most important email
type RankedEmail struct {
	ID              string  `json:"id"`
	Subject         string  `json:"subject"`
	From            string  `json:"from"`
	ImportanceScore float64 `json:"importanceScore"`
	IsUnread        bool    `json:"isUnread"`
}

// TopScore is one entry of the ranking leaderboard
type TopScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	From    string  `json:"from"`
}

// MailSyncResponse is the mail sync payload
type MailSyncResponse struct {
	MostImportantEmail  *RankedEmail `json:"mostImportantEmail"`
	TotalEmails         int          `json:"totalEmails"`
	LastUpdated         string       `json:"lastUpdated"`
	NextUpdate          string       `json:"nextUpdate,omitempty"`
	ImportanceThreshold float64      `json:"importanceThreshold,omitempty"`
	TopScores           []TopScore   `json:"topScores,omitempty"`
	Message             string       `json:"message,omitempty"`
}

// CalendarSyncResponse is the calendar sync payload
type CalendarSyncResponse struct {
	Events []*models.CalendarEntry `json:"events"`
}

// SyncMail fetches recent mail, ranks it, and surfaces the single most
// important message
func (h *SyncHandler) SyncMail(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}
	if !user.HasGoogleTokens() {
		response.Error(w, http.StatusUnauthorized, "Upstream Auth Error", "Google account is not connected")
		return
	}

	ctx := r.Context()
	client := h.clients(ctx, user)

	messages, err := client.FetchRecentMessages(ctx)
	if err != nil {
		h.respondGoogleError(w, user, "mail_sync_failed", err)
		return
	}

	h.persistRefreshedToken(ctx, user, client)

	now := h.now()
	if len(messages) == 0 {
		response.JSON(w, http.StatusOK, MailSyncResponse{
			TotalEmails: 0,
			LastUpdated: now.UTC().Format(time.RFC3339),
			Message:     "No recent emails found",
		})
		return
	}

	cfg := h.resolver.Resolve(ctx, user.ID)
	ranking := mailrank.Rank(messages, cfg, now)

	if ranking.Top == nil {
		response.JSON(w, http.StatusOK, MailSyncResponse{
			TotalEmails: ranking.Total,
			LastUpdated: now.UTC().Format(time.RFC3339),
			Message:     "No important emails found",
		})
		return
	}

	top := ranking.Top
	resp := MailSyncResponse{
		MostImportantEmail: &RankedEmail{
			ID:              top.Message.ID,
			Subject:         top.Message.Subject,
			From:            top.Message.From,
			ImportanceScore: top.Score,
			IsUnread:        top.Message.IsUnread(),
		},
		TotalEmails:         ranking.Total,
		LastUpdated:         now.UTC().Format(time.RFC3339),
		NextUpdate:          now.Add(MailSyncInterval).UTC().Format(time.RFC3339),
		ImportanceThreshold: top.Score,
	}
	for _, entry := range ranking.TopScores(3) {
		resp.TopScores = append(resp.TopScores, TopScore{
			Subject: entry.Message.Subject,
			Score:   entry.Score,
			From:    entry.Message.From,
		})
	}

	response.JSON(w, http.StatusOK, resp)
}

// SyncCalendar fetches the next few upcoming calendar events
func (h *SyncHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}
	if !user.HasGoogleTokens() {
		response.Error(w, http.StatusUnauthorized, "Upstream Auth Error", "Google account is not connected")
		return
	}

	ctx := r.Context()
	client := h.clients(ctx, user)

	entries, err := client.FetchUpcomingEvents(ctx, h.now())
	if err != nil {
		h.respondGoogleError(w, user, "calendar_sync_failed", err)
		return
	}

	h.persistRefreshedToken(ctx, user, client)

	if entries == nil {
		entries = []*models.CalendarEntry{}
	}
	response.JSON(w, http.StatusOK, CalendarSyncResponse{Events: entries})
}

// respondGoogleError maps upstream failures onto distinguishable statuses
// so the UI can re-authenticate or back off instead of showing a generic
// failure.
func (h *SyncHandler) respondGoogleError(w http.ResponseWriter, user *models.User, event string, err error) {
	h.logger.Warn(event,
		zap.String("user_id", user.ID.String()),
		zap.Error(err),
	)

	switch {
	case google.IsAuthError(err):
		response.Error(w, http.StatusUnauthorized, "Upstream Auth Error", "Google authorization expired, please re-authenticate")
	case google.IsRateLimitError(err):
		response.Error(w, http.StatusTooManyRequests, "Rate Limit Exceeded", "Google API rate limit exceeded, try again later")
	default:
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sync with Google")
	}
}

// persistRefreshedToken stores the token the client holds after API calls.
// Failures are logged, not surfaced; the sync already succeeded.
func (h *SyncHandler) persistRefreshedToken(ctx context.Context, user *models.User, client GoogleSyncClient) {
	token, err := client.CurrentToken()
	if err != nil || token == nil {
		return
	}

	if user.GoogleAccessToken != nil && *user.GoogleAccessToken == token.AccessToken {
		return
	}

	access := token.AccessToken
	refresh := token.RefreshToken
	refreshPtr := user.GoogleRefreshToken
	if refresh != "" {
		refreshPtr = &refresh
	}
	expiry := token.Expiry

	if err := h.tokens.UpdateGoogleTokens(ctx, user.ID, &access, refreshPtr, &expiry); err != nil {
		h.logger.Warn("google_token_persist_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
}
