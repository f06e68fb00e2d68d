package models

import "time"

// ScoringConfig holds the tunable inputs of the email importance scorer.
// Defaults are compiled in; an optional YAML file and a database row can
// override them (database wins). All weights are additive contributions.
type ScoringConfig struct {
	// RecencyWindow bounds the recency bonus: messages older than this get
	// no recency contribution.
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window"`
	// RecencyBase is the maximum recency contribution, decayed by
	// RecencyDecayPerHour for each hour of message age.
	RecencyBase         float64 `json:"recency_base" yaml:"recency_base"`
	RecencyDecayPerHour float64 `json:"recency_decay_per_hour" yaml:"recency_decay_per_hour"`

	VIPDomains  []string `json:"vip_domains" yaml:"vip_domains"`
	VIPKeywords []string `json:"vip_keywords" yaml:"vip_keywords"`
	// VIPDomainWeight applies once when the sender matches any VIP domain;
	// VIPKeywordWeight applies once when the sender contains any VIP keyword.
	VIPDomainWeight  float64 `json:"vip_domain_weight" yaml:"vip_domain_weight"`
	VIPKeywordWeight float64 `json:"vip_keyword_weight" yaml:"vip_keyword_weight"`

	UrgentKeywords    []string `json:"urgent_keywords" yaml:"urgent_keywords"`
	ImportantKeywords []string `json:"important_keywords" yaml:"important_keywords"`
	// Subject keyword weights apply per matching keyword, cumulatively.
	UrgentKeywordWeight    float64 `json:"urgent_keyword_weight" yaml:"urgent_keyword_weight"`
	ImportantKeywordWeight float64 `json:"important_keyword_weight" yaml:"important_keyword_weight"`

	UnreadWeight  float64 `json:"unread_weight" yaml:"unread_weight"`
	StarredWeight float64 `json:"starred_weight" yaml:"starred_weight"`
	// SpamPenalty is subtracted for spam or promotional messages.
	SpamPenalty float64 `json:"spam_penalty" yaml:"spam_penalty"`
}

// DefaultScoringConfig returns the compiled-in scorer weights.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		RecencyWindow:       24 * time.Hour,
		RecencyBase:         50,
		RecencyDecayPerHour: 2,

		VIPDomains:       []string{"company.com", "important-client.com", "bank.com"},
		VIPKeywords:      []string{"ceo", "manager", "director", "urgent", "important"},
		VIPDomainWeight:  30,
		VIPKeywordWeight: 20,

		UrgentKeywords:         []string{"urgent", "asap", "immediate", "emergency", "deadline"},
		ImportantKeywords:      []string{"important", "priority", "action required", "response needed"},
		UrgentKeywordWeight:    25,
		ImportantKeywordWeight: 15,

		UnreadWeight:  10,
		StarredWeight: 20,
		SpamPenalty:   50,
	}
}
