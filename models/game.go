// models/game.go
package models

// Game is owned by the publishing side; this service only checks that a row exists.
type Game struct {
	GameID int64 `json:"game_id" gorm:"primaryKey;autoIncrement:false"`

	// 🔗 Scores reference games(game_id)
	Scores []Score `json:"-" gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:RESTRICT"`
}
