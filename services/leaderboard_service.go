// services/leaderboard_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"leaderboard-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const DefaultLeaderboardLimit = 10

var errInvalidSubmission = errors.New("invalid score submission")

type LeaderboardService struct {
	Store    ScoreStore
	Verifier HumanVerifier
	Sessions *SessionSigner
	Limit    int
	Now      func() time.Time
}

func NewLeaderboardService(store ScoreStore, verifier HumanVerifier, sessions *SessionSigner, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return &LeaderboardService{
		Store:    store,
		Verifier: verifier,
		Sessions: sessions,
		Limit:    limit,
		Now:      time.Now,
	}
}

// SubmitScoreRequest is the POST /score body. Pointers tell "absent or null"
// apart from zero values; a wrong JSON type fails decoding.
type SubmitScoreRequest struct {
	GameID         *int64   `json:"game_id"`
	PlayerName     *string  `json:"player_name"`
	PlayerID       *string  `json:"player_id"`
	PlayerScore    *float64 `json:"player_score"`
	SessionToken   *string  `json:"session_token"`
	TurnstileToken *string  `json:"turnstile_token"`
}

type scoreSubmission struct {
	GameID         int64
	PlayerName     string
	PlayerID       string
	SessionSubject string // player_id exactly as sent; what /session signed
	PlayerScore    float64
	SessionToken   string
	TurnstileToken string
}

func (r SubmitScoreRequest) validate() (scoreSubmission, error) {
	if r.GameID == nil || r.PlayerName == nil || r.PlayerID == nil ||
		r.PlayerScore == nil || r.SessionToken == nil || r.TurnstileToken == nil {
		return scoreSubmission{}, errInvalidSubmission
	}
	sub := scoreSubmission{
		GameID:         *r.GameID,
		PlayerName:     cleanPlayerField(*r.PlayerName),
		PlayerID:       cleanPlayerField(*r.PlayerID),
		SessionSubject: *r.PlayerID,
		PlayerScore:    *r.PlayerScore,
		SessionToken:   *r.SessionToken,
		TurnstileToken: *r.TurnstileToken,
	}
	if sub.PlayerName == "" || sub.PlayerID == "" {
		return scoreSubmission{}, errInvalidSubmission
	}
	if math.IsNaN(sub.PlayerScore) || sub.PlayerScore < models.MinPlayerScore || sub.PlayerScore > models.MaxPlayerScore {
		return scoreSubmission{}, errInvalidSubmission
	}
	return sub, nil
}

func cleanPlayerField(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// GetLeaderboard handles GET /leaderboard?game=<game_id>
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	gameID, err := strconv.ParseInt(strings.TrimSpace(c.Query("game")), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game query parameter must be an integer game id"})
	}

	entries, err := s.Store.TopScores(c.UserContext(), gameID, s.Limit)
	if err != nil {
		log.Printf("❌ [LEADERBOARD] %s game=%d: %v", requestID(c), gameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return c.JSON(entries)
}

// IssueSession handles GET /session?game_id=<id>&player_id=<id>
func (s *LeaderboardService) IssueSession(c *fiber.Ctx) error {
	gameID := c.Query("game_id")
	playerID := c.Query("player_id")
	if gameID == "" || playerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id and player_id are required"})
	}

	token := s.Sessions.Issue(gameID, playerID, s.Now())
	return c.JSON(fiber.Map{"token": token})
}

// SubmitScore handles POST /score. Checks run in order and stop at the first
// failure; the row is written only after all of them pass.
func (s *LeaderboardService) SubmitScore(c *fiber.Ctx) error {
	rid := requestID(c)

	var req SubmitScoreRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Printf("🚫 [SCORE] %s malformed body: %v", rid, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sub, err := req.validate()
	if err != nil {
		log.Printf("🚫 [SCORE] %s rejected: %v", rid, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// 1. Session token: current or previous window, over the untrimmed player_id
	if !s.Sessions.Verify(strconv.FormatInt(sub.GameID, 10), sub.SessionSubject, sub.SessionToken, s.Now()) {
		log.Printf("🚫 [SESSION] %s invalid token for game=%d player=%q (prefix: %.8s)", rid, sub.GameID, sub.PlayerID, sub.SessionToken)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid session token"})
	}

	// 2. Human verification
	ip := clientIP(c)
	ok, err := s.Verifier.Verify(c.UserContext(), sub.TurnstileToken, ip)
	if err != nil {
		log.Printf("❌ [TURNSTILE] %s verification call failed: %v", rid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "human verification unavailable"})
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "human verification failed"})
	}

	// 3. Game must exist
	exists, err := s.Store.GameExists(c.UserContext(), sub.GameID)
	if err != nil {
		log.Printf("❌ [SCORE] %s %v", rid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up game"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	// 4. Persist
	score := &models.Score{
		ID:          uuid.NewString(),
		GameID:      sub.GameID,
		PlayerName:  sub.PlayerName,
		PlayerID:    sub.PlayerID,
		PlayerScore: sub.PlayerScore,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.InsertScore(c.UserContext(), score); err != nil {
		log.Printf("❌ [SCORE] %s %v", rid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save score"})
	}

	log.Printf("✅ [SCORE] %s game=%d player=%q score=%g", rid, score.GameID, score.PlayerID, score.PlayerScore)
	return c.JSON(fiber.Map{"ok": true})
}

// Health handles GET /healthz
func (s *LeaderboardService) Health(c *fiber.Ctx) error {
	if err := s.Store.Ping(c.UserContext()); err != nil {
		log.Printf("⚠️ [HEALTH] database ping failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("request_id").(string); ok {
		return id
	}
	return "-"
}

// clientIP prefers the address resolved by the request context middleware.
func clientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals("client_ip").(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}
