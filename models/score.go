// models/score.go
package models

import "time"

const (
	MinPlayerScore = 0
	MaxPlayerScore = 1000
)

// Score is one accepted submission. Rows are inserted once and never updated.
type Score struct {
	ID          string    `json:"-" gorm:"primaryKey;type:uuid"`
	GameID      int64     `json:"game_id" gorm:"not null;index:idx_scores_game_score,priority:1"`
	PlayerName  string    `json:"player_name" gorm:"not null"`
	PlayerID    string    `json:"player_id" gorm:"not null"`
	PlayerScore float64   `json:"player_score" gorm:"not null;index:idx_scores_game_score,priority:2,sort:desc"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}

// LeaderboardEntry is the public projection of a Score.
type LeaderboardEntry struct {
	PlayerName  string    `json:"player_name"`
	PlayerScore float64   `json:"player_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeaderboardSnapshot is the document exported to object storage for one game.
type LeaderboardSnapshot struct {
	GameID      int64              `json:"game_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Entries     []LeaderboardEntry `json:"entries"`
}
