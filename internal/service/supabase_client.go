package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"obi-site/internal/config"
	"obi-site/pkg/logger"
)

// PostgRESTError is the error body Supabase's REST API returns
type PostgRESTError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
	StatusCode int    `json:"-"`
}

func (e *PostgRESTError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Supabase returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("Supabase returned status %d: %s", e.StatusCode, e.Message)
}

// SupabaseClient talks to a Supabase project's REST API
type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSupabaseClient creates a new Supabase client
func NewSupabaseClient(cfg *config.Config, logger *logger.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: cfg.SupabaseURL,
		anonKey: cfg.SupabaseAnonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Insert adds one row to table. Supabase is asked not to echo the row back,
// so a 201 with an empty body is success.
func (s *SupabaseClient) Insert(ctx context.Context, table string, record interface{}) error {
	jsonBody, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Supabase: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parsePostgRESTError(resp.StatusCode, body)
	}

	s.logger.WithFields(map[string]interface{}{
		"table":       table,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Supabase insert succeeded")

	return nil
}

// Health checks that the REST endpoint answers with the configured key
func (s *SupabaseClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/v1/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Supabase: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("Supabase returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.anonKey))
	req.Header.Set("Accept", "application/json")
}

func parsePostgRESTError(status int, body []byte) error {
	pgErr := &PostgRESTError{StatusCode: status}
	if err := json.Unmarshal(body, pgErr); err != nil || pgErr.Message == "" {
		pgErr.Message = string(body)
	}
	return pgErr
}
