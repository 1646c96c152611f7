// services/turnstile_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// HumanVerifier confirms that a challenge token was produced by a real browser.
type HumanVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// TurnstileClient calls Cloudflare Turnstile's siteverify endpoint.
type TurnstileClient struct {
	VerifyURL string
	Secret    string
	Client    *http.Client
}

type SiteverifyResponse struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
}

func NewTurnstileClient(verifyURL, secret string, client *http.Client) *TurnstileClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &TurnstileClient{
		VerifyURL: verifyURL,
		Secret:    secret,
		Client:    client,
	}
}

// Verify posts the token and caller IP to siteverify. Only an explicit
// success flag counts; transport and decode failures come back as errors.
func (c *TurnstileClient) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("siteverify returned status %d: %s", resp.StatusCode, string(body))
	}

	var out SiteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	if !out.Success {
		log.Printf("[TURNSTILE] challenge rejected ip=%s codes=%v", remoteIP, out.ErrorCodes)
	}
	return out.Success, nil
}
