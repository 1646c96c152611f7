// services/score_store.go
package services

import (
	"context"
	"errors"
	"fmt"

	"leaderboard-service/models"

	"gorm.io/gorm"
)

// ScoreStore is the relational side of the service.
type ScoreStore interface {
	TopScores(ctx context.Context, gameID int64, limit int) ([]models.LeaderboardEntry, error)
	GameExists(ctx context.Context, gameID int64) (bool, error)
	InsertScore(ctx context.Context, score *models.Score) error
	GameIDs(ctx context.Context) ([]int64, error)
	Ping(ctx context.Context) error
}

type GormScoreStore struct {
	DB *gorm.DB
}

func NewGormScoreStore(db *gorm.DB) *GormScoreStore {
	return &GormScoreStore{DB: db}
}

// AutoMigrate creates the games and scores tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Game{}, &models.Score{})
}

// TopScores returns up to limit scores for a game, highest first; ties go to the earlier submission.
func (s *GormScoreStore) TopScores(ctx context.Context, gameID int64, limit int) ([]models.LeaderboardEntry, error) {
	entries := []models.LeaderboardEntry{}
	err := s.DB.WithContext(ctx).
		Model(&models.Score{}).
		Select("player_name, player_score, created_at").
		Where("game_id = ?", gameID).
		Order("player_score DESC").
		Order("created_at ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query top scores for game %d: %w", gameID, err)
	}
	return entries, nil
}

func (s *GormScoreStore) GameExists(ctx context.Context, gameID int64) (bool, error) {
	var game models.Game
	if err := s.DB.WithContext(ctx).Select("game_id").First(&game, "game_id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("look up game %d: %w", gameID, err)
	}
	return true, nil
}

func (s *GormScoreStore) InsertScore(ctx context.Context, score *models.Score) error {
	if err := s.DB.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("insert score for game %d: %w", score.GameID, err)
	}
	return nil
}

// GameIDs lists every known game, ascending.
func (s *GormScoreStore) GameIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.DB.WithContext(ctx).Model(&models.Game{}).Order("game_id").Pluck("game_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return ids, nil
}

func (s *GormScoreStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
