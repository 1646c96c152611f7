// services/session.go
package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

const DefaultSessionWindow = 180 * time.Second

// SessionSigner issues self-verifying session tokens. A token is
// HMAC-SHA256("{game_id}:{player_id}:{window}") in unpadded base64url, where
// window is floor(unix_ms / window_ms). Nothing is stored server side.
type SessionSigner struct {
	secret []byte
	window time.Duration
}

func NewSessionSigner(secret string, window time.Duration) *SessionSigner {
	if window < time.Millisecond {
		window = DefaultSessionWindow
	}
	return &SessionSigner{secret: []byte(secret), window: window}
}

// Window returns the index of the time window containing now.
func (s *SessionSigner) Window(now time.Time) int64 {
	return now.UnixMilli() / s.window.Milliseconds()
}

// Issue returns the token for (gameID, playerID) in the window containing now.
func (s *SessionSigner) Issue(gameID, playerID string, now time.Time) string {
	return s.sign(gameID, playerID, s.Window(now))
}

// Verify accepts a token minted in the current window or the one before it,
// so a session is good for one to two windows depending on when it started.
func (s *SessionSigner) Verify(gameID, playerID, token string, now time.Time) bool {
	tw := s.Window(now)
	for _, w := range []int64{tw, tw - 1} {
		if hmac.Equal([]byte(s.sign(gameID, playerID, w)), []byte(token)) {
			return true
		}
	}
	return false
}

func (s *SessionSigner) sign(gameID, playerID string, window int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%d", gameID, playerID, window)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
