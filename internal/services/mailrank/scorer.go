package mailrank

import (
	"sort"
	"strings"
	"time"

	"github.com/nirvanaflow/api/internal/models"
)

// ScoredEmail pairs a message with its computed importance score
type ScoredEmail struct {
	Message *models.EmailMessage
	Score   float64
}

// Ranking is the result of scoring a batch of messages. Top is nil when the
// batch is empty or when even the best message scored zero; Total always
// reflects the number of messages that were scored.
type Ranking struct {
	Top    *ScoredEmail
	Scored []ScoredEmail
	Total  int
}

// Score computes the importance of a single message at the given reference
// time. The result is never negative.
func Score(msg *models.EmailMessage, cfg *models.ScoringConfig, now time.Time) float64 {
	var score float64

	// Recency bonus decays per hour of age and cuts off entirely outside
	// the window.
	hours := now.Sub(msg.ReceivedAt).Hours()
	if hours <= cfg.RecencyWindow.Hours() {
		score += cfg.RecencyBase - hours*cfg.RecencyDecayPerHour
	}

	sender := strings.ToLower(msg.From)
	for _, domain := range cfg.VIPDomains {
		if strings.Contains(sender, strings.ToLower(domain)) {
			score += cfg.VIPDomainWeight
			break
		}
	}
	for _, keyword := range cfg.VIPKeywords {
		if strings.Contains(sender, strings.ToLower(keyword)) {
			score += cfg.VIPKeywordWeight
			break
		}
	}

	// Subject keywords stack: a subject hitting several keywords earns the
	// weight once per keyword.
	subject := strings.ToLower(msg.Subject)
	for _, keyword := range cfg.UrgentKeywords {
		if strings.Contains(subject, strings.ToLower(keyword)) {
			score += cfg.UrgentKeywordWeight
		}
	}
	for _, keyword := range cfg.ImportantKeywords {
		if strings.Contains(subject, strings.ToLower(keyword)) {
			score += cfg.ImportantKeywordWeight
		}
	}

	if msg.HasLabel(models.LabelUnread) {
		score += cfg.UnreadWeight
	}
	if msg.HasLabel(models.LabelStarred) {
		score += cfg.StarredWeight
	}
	if msg.HasLabel(models.LabelSpam) || msg.HasLabel(models.LabelPromotions) {
		score -= cfg.SpamPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

// Rank scores a batch of messages and orders them by descending importance.
// The sort is stable so equally scored messages keep their fetch order.
func Rank(messages []*models.EmailMessage, cfg *models.ScoringConfig, now time.Time) *Ranking {
	ranking := &Ranking{Total: len(messages)}
	if len(messages) == 0 {
		return ranking
	}

	ranking.Scored = make([]ScoredEmail, 0, len(messages))
	for _, msg := range messages {
		ranking.Scored = append(ranking.Scored, ScoredEmail{
			Message: msg,
			Score:   Score(msg, cfg, now),
		})
	}

	sort.SliceStable(ranking.Scored, func(i, j int) bool {
		return ranking.Scored[i].Score > ranking.Scored[j].Score
	})

	if ranking.Scored[0].Score > 0 {
		ranking.Top = &ranking.Scored[0]
	}

	return ranking
}

// TopScores returns up to n leading entries from the ranking
func (r *Ranking) TopScores(n int) []ScoredEmail {
	if n > len(r.Scored) {
		n = len(r.Scored)
	}
	return r.Scored[:n]
}
