package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 2048

// post sends one /translate call. Any status other than 200 is a StatusError.
func (c *Client) post(ctx context.Context, request translateRequest) (translateResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return translateResponse{}, fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return translateResponse{}, fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return translateResponse{}, fmt.Errorf("libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return translateResponse{}, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return translateResponse{}, fmt.Errorf("decode translate response: %w", err)
	}
	return out, nil
}

// errorMessage prefers the JSON error field and falls back to the raw body text.
func errorMessage(raw []byte) string {
	var reply translateResponse
	if err := json.Unmarshal(raw, &reply); err == nil && reply.Error != "" {
		return reply.Error
	}
	return strings.TrimSpace(string(raw))
}
