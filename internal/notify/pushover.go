// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package notify implements the two delivery channels named in spec.md
// §6: Pushover push notifications and Mailgun email, grounded on the
// original source's tasks/delivery/{pushover,mailgun}.rs.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// PushoverClient sends push notifications via the Pushover API.
type PushoverClient struct {
	token      string
	httpClient *http.Client
}

// NewPushoverClient constructs a [PushoverClient]. token is the
// application-level API token (CEREAL_PUSHOVER_TOKEN, spec.md §11).
func NewPushoverClient(token string) *PushoverClient {
	return &PushoverClient{token: token, httpClient: http.DefaultClient}
}

// SetHTTPClient overrides the outbound HTTP client, for tests that need to
// substitute a fake transport instead of hitting the real Pushover API.
func (c *PushoverClient) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// SendMessage posts message to userKey's device (spec.md §4.E).
func (c *PushoverClient) SendMessage(ctx context.Context, userKey, message string) error {
	body, err := json.Marshal(map[string]string{
		"token":   c.token,
		"user":    userKey,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("notify: encode pushover payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send pushover message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: pushover returned status %d", resp.StatusCode)
	}
	return nil
}
