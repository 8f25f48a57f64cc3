package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider calls a completion microservice: POST {baseURL}/generate
// with {"prompt": ...}, answered by {"text": ..., "error": ...}.
type HTTPProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) (*HTTPProvider, error) {
	if baseURL == "" {
		return nil, errors.New("completion service url is not configured")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}, nil
}

func (p *HTTPProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
	}
	return out.Text, nil
}
