package mailrank

import (
	"testing"
	"time"

	"github.com/nirvanaflow/api/internal/models"
)

func testMessage(subject, from string, age time.Duration, labels []string, now time.Time) *models.EmailMessage {
	return &models.EmailMessage{
		ID:         "msg-1",
		From:       from,
		Subject:    subject,
		Labels:     labels,
		ReceivedAt: now.Add(-age),
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := models.DefaultScoringConfig()

	tests := []struct {
		name     string
		msg      *models.EmailMessage
		expected float64
	}{
		{
			name:     "recent unread urgent email",
			msg:      testMessage("URGENT: Contract review today", "alice@example.com", time.Hour, []string{models.LabelUnread}, now),
			expected: 83, // 48 recency + 25 urgent + 10 unread
		},
		{
			name:     "recency decays per hour",
			msg:      testMessage("hello", "alice@example.com", 10*time.Hour, nil, now),
			expected: 30,
		},
		{
			name:     "no recency bonus outside window",
			msg:      testMessage("hello", "alice@example.com", 48*time.Hour, nil, now),
			expected: 0,
		},
		{
			name:     "vip domain and sender keyword stack once each",
			msg:      testMessage("hello", "ceo@company.com", 48*time.Hour, nil, now),
			expected: 50, // 30 domain + 20 keyword
		},
		{
			name:     "subject keywords are cumulative",
			msg:      testMessage("urgent deadline", "alice@example.com", 48*time.Hour, nil, now),
			expected: 50, // 25 + 25
		},
		{
			name:     "important keywords weigh less",
			msg:      testMessage("important: action required", "alice@example.com", 48*time.Hour, nil, now),
			expected: 30, // 15 + 15
		},
		{
			name:     "starred bonus",
			msg:      testMessage("hello", "alice@example.com", 48*time.Hour, []string{models.LabelStarred}, now),
			expected: 20,
		},
		{
			name:     "spam floors at zero",
			msg:      testMessage("hello", "alice@example.com", 48*time.Hour, []string{models.LabelSpam}, now),
			expected: 0,
		},
		{
			name:     "promotions penalty offsets other signals",
			msg:      testMessage("hello", "alice@example.com", 48*time.Hour, []string{models.LabelStarred, models.LabelUnread, models.LabelPromotions}, now),
			expected: 0, // 20 + 10 - 50 clamped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Score(tt.msg, cfg, now); got != tt.expected {
				t.Errorf("Score() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScoreUnreadMonotonic(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := models.DefaultScoringConfig()

	read := testMessage("quarterly report", "alice@example.com", 2*time.Hour, nil, now)
	unread := testMessage("quarterly report", "alice@example.com", 2*time.Hour, []string{models.LabelUnread}, now)

	diff := Score(unread, cfg, now) - Score(read, cfg, now)
	if diff != cfg.UnreadWeight {
		t.Errorf("unread bonus = %v, want %v", diff, cfg.UnreadWeight)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cfg := models.DefaultScoringConfig()

	t.Run("orders by descending score", func(t *testing.T) {
		t.Parallel()
		messages := []*models.EmailMessage{
			testMessage("hello", "alice@example.com", 48*time.Hour, []string{models.LabelStarred}, now),
			testMessage("urgent", "alice@example.com", 48*time.Hour, []string{models.LabelUnread}, now),
		}

		ranking := Rank(messages, cfg, now)
		if ranking.Total != 2 {
			t.Fatalf("Total = %d, want 2", ranking.Total)
		}
		if ranking.Top == nil {
			t.Fatal("expected a top message")
		}
		if ranking.Top.Message.Subject != "urgent" {
			t.Errorf("top = %q, want %q", ranking.Top.Message.Subject, "urgent")
		}
		if ranking.Scored[0].Score < ranking.Scored[1].Score {
			t.Error("scored list not ordered")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()
		ranking := Rank(nil, cfg, now)
		if ranking.Top != nil {
			t.Error("expected no top message")
		}
		if ranking.Total != 0 {
			t.Errorf("Total = %d, want 0", ranking.Total)
		}
	})

	t.Run("all-zero batch has count but no top", func(t *testing.T) {
		t.Parallel()
		messages := []*models.EmailMessage{
			testMessage("hello", "alice@example.com", 48*time.Hour, nil, now),
			testMessage("hi again", "bob@example.com", 72*time.Hour, []string{models.LabelSpam}, now),
		}

		ranking := Rank(messages, cfg, now)
		if ranking.Top != nil {
			t.Errorf("expected no top message, got %q", ranking.Top.Message.Subject)
		}
		if ranking.Total != 2 {
			t.Errorf("Total = %d, want 2", ranking.Total)
		}
	})

	t.Run("ties keep fetch order", func(t *testing.T) {
		t.Parallel()
		messages := []*models.EmailMessage{
			testMessage("first", "alice@example.com", 48*time.Hour, []string{models.LabelStarred}, now),
			testMessage("second", "bob@example.com", 48*time.Hour, []string{models.LabelStarred}, now),
		}

		ranking := Rank(messages, cfg, now)
		if ranking.Top == nil || ranking.Top.Message.Subject != "first" {
			t.Error("expected stable ordering to keep the first message on top")
		}
	})

	t.Run("top scores caps at available entries", func(t *testing.T) {
		t.Parallel()
		messages := []*models.EmailMessage{
			testMessage("only one", "alice@example.com", time.Hour, nil, now),
		}

		ranking := Rank(messages, cfg, now)
		if got := len(ranking.TopScores(3)); got != 1 {
			t.Errorf("TopScores(3) returned %d entries, want 1", got)
		}
	})
}
