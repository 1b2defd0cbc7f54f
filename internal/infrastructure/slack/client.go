// Package slack posts messages through the Slack Web API. API-level
// failures (ok:false) surface as an empty message id; only transport
// errors come back as errors, matching the dispatcher contract.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"prpulse/internal/blockkit"
	"prpulse/internal/bootstrap/config"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
)

const defaultAPIBaseURL = "https://slack.com/api"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	baseURL := cfg.Slack.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	TS      string `json:"ts"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// OpenDM resolves the direct-message channel for a user.
func (c *Client) OpenDM(ctx context.Context, token string, userID string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	resp, err := c.call(ctx, token, "conversations.open", map[string]any{"users": userID})
	if err != nil {
		return "", err
	}
	if !resp.OK {
		logging.Warn(ctx, "open dm rejected", slog.String("user_id", userID), slog.String("slack_error", resp.Error))
		return "", nil
	}
	return resp.Channel.ID, nil
}

// PostMessage posts to a channel and returns the message timestamp id.
func (c *Client) PostMessage(ctx context.Context, token string, channelID string, msg blockkit.Message) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	payload := map[string]any{
		"channel": channelID,
		"text":    msg.Text,
	}
	if len(msg.Blocks) > 0 {
		payload["blocks"] = msg.Blocks
	}
	if len(msg.Attachments) > 0 {
		payload["attachments"] = msg.Attachments
	}

	resp, err := c.call(ctx, token, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		logging.Warn(ctx, "post message rejected", slog.String("channel_id", channelID), slog.String("slack_error", resp.Error))
		return "", nil
	}
	return resp.TS, nil
}

func (c *Client) call(ctx context.Context, token string, method string, payload any) (apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, errs.Wrapf(err, "marshal %s payload", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return apiResponse{}, errs.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, errs.Wrapf(err, "call %s", method)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return apiResponse{}, errs.Wrapf(err, "read %s response", method)
	}
	if httpResp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("%s returned status %d", method, httpResp.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiResponse{}, errs.Wrapf(err, "decode %s response", method)
	}
	return parsed, nil
}
