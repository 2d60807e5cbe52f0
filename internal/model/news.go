package model

import "time"

// NewsArticle is a single headline from the news feed
type NewsArticle struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Source           string    `json:"source"`
	ImageURL         string    `json:"image_url,omitempty"`
	URL              string    `json:"url"`
	PublishedAt      time.Time `json:"published_at"`
	Category         string    `json:"category"`
	CredibilityScore float64   `json:"credibility_score"` // 0.0 - 1.0, source reputation
}

// NewsFeed is a page of headlines
type NewsFeed struct {
	Articles   []NewsArticle `json:"articles"`
	TotalCount int           `json:"total_count"`
	Category   string        `json:"category"`
	HasMore    bool          `json:"has_more"`
}
