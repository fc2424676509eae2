package model

import "time"

// PracticeLog is a single rated practice session. Rows are written once and
// never updated; NextReviewAt is fixed at creation from Confidence.
type PracticeLog struct {
	ID           string    `gorm:"primaryKey;index:idx_logs_review,priority:3" json:"id"`
	UserID       string    `gorm:"not null;index:idx_logs_review,priority:1" json:"userId"`
	Slug         string    `gorm:"not null" json:"slug"`
	Title        string    `gorm:"not null" json:"title"`
	Difficulty   string    `gorm:"not null;default:Medium" json:"difficulty"`
	Confidence   int       `gorm:"not null" json:"confidence"`
	NextReviewAt time.Time `gorm:"not null;index:idx_logs_review,priority:2" json:"nextReviewAt"`

	Category    string  `json:"category"`
	Approach    *string `json:"approach"`
	Complexity  *string `json:"complexity"`
	CodeSnippet *string `json:"codeSnippet"`
	Solution    *string `json:"solution"`
	Language    *string `json:"language"`

	// Seconds
	TimeTaken    *int  `json:"timeTaken"`
	TimeLimit    *int  `json:"timeLimit"`
	MetTimeLimit *bool `json:"metTimeLimit"`

	CreatedAt time.Time `json:"createdAt"`
}
