package models

import "time"

// SearchLogEntry records one submitted search. It carries no visitor attribution.
type SearchLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	QueryText string    `gorm:"not null" json:"query_text"`
	CreatedAt time.Time `json:"created_at"`
}

// LastViewedPostLogEntry records one post selection. PostTitle is a snapshot taken
// at selection time so the log stays readable on its own.
type LastViewedPostLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	PostTitle string    `gorm:"not null" json:"post_title"`
	CreatedAt time.Time `json:"created_at"`
}
