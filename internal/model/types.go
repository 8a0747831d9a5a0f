package model

import "time"

// RankSentinel encodes an absent creator rank. Larger rank means less
// prominent, so a missing rank normalizes to the worst position.
const RankSentinel = 999999

// Account is a snapshot of a creator's profile metrics for one scoring run.
// Built once from fetched data, read-only afterwards.
type Account struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	DisplayName    string           `json:"display_name,omitempty"`
	Followers      int              `json:"followers"`
	Rank           int              `json:"rank"` // RankSentinel when absent
	Interactions24 int              `json:"interactions_24h"`
	Sentiment      float64          `json:"sentiment"`
	GalaxyScore    float64          `json:"galaxy_score"`
	Verified       bool             `json:"verified"`
	Platforms      []string         `json:"platforms,omitempty"`
	Topics         []TopicInfluence `json:"topic_influence,omitempty"`
	RecentPosts    []Post           `json:"recent_posts,omitempty"`
}

// TopicInfluence is one entry of a creator's topic influence list.
type TopicInfluence struct {
	Topic   string  `json:"topic"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Rank    int     `json:"rank"`
}

// Post carries the per-post interaction volume used for the viral coefficient.
type Post struct {
	ID           string    `json:"id"`
	Interactions int       `json:"interactions_total"`
	CreatedAt    time.Time `json:"created_at"`
}

// Edge is a directed, weighted interaction between two accounts.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Type   string  `json:"type"` // like, reply, retweet, quote, mention
}

// CategoryMatch is the per-taxonomy-category outcome of alignment matching.
type CategoryMatch struct {
	RawCount int      `json:"raw_count"`
	Score    float64  `json:"score"`
	Level    string   `json:"level"` // High, Medium, Low
	Keywords []string `json:"keywords,omitempty"`
}

// ScoreResult holds every derived metric for one account. The json tags
// match the exported report format.
type ScoreResult struct {
	AccountID       string                   `json:"account_id"`
	BaseInfluence   float64                  `json:"base_influence"`
	HopInfluence    []float64                `json:"hop_influence"` // index 0 = hop 1
	TotalReach      float64                  `json:"total_reach"`
	ViralCoeff      float64                  `json:"viral_coefficient"`
	AlignmentScore  float64                  `json:"alignment_score"`
	Degree          float64                  `json:"degree_centrality"`
	Betweenness     float64                  `json:"betweenness_centrality"`
	Closeness       float64                  `json:"closeness_centrality"`
	Eigenvector     float64                  `json:"eigenvector_centrality"`
	NetworkPosition string                   `json:"network_position"`
	Categories      map[string]CategoryMatch `json:"categories,omitempty"`
	MatchedKeywords []string                 `json:"matched_keywords,omitempty"`
	NetworkQuality  float64                  `json:"network_quality_score"`
	SocialScore     float64                  `json:"social_score"`
	Flagged         bool                     `json:"flag_status"`
	FlagReasons     []string                 `json:"flag_reasons,omitempty"`
	Incomplete      bool                     `json:"incomplete,omitempty"`
	Err             string                   `json:"error,omitempty"`
}

// BatchSummary aggregates a full scoring run.
type BatchSummary struct {
	TotalAccounts  int           `json:"total_accounts"`
	ScoredAccounts int           `json:"scored_accounts"`
	MeanScore      float64       `json:"mean_score"`
	MinScore       float64       `json:"min_score"`
	MaxScore       float64       `json:"max_score"`
	FlaggedPercent float64       `json:"flagged_percentage"`
	Flagged        []ScoreResult `json:"flagged_accounts"` // descending score, ties broken by account id
	Timestamp      time.Time     `json:"analysis_timestamp"`
}
