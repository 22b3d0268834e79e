package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSheetDisabled signals that no audit webhook is configured.
var ErrSheetDisabled = errors.New("sheets: sink disabled")

// SheetRow is one registration outcome appended to the external audit sheet.
type SheetRow struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	ApprovalType string `json:"approvalType,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// SheetConfig holds the webhook endpoint for the audit sheet.
type SheetConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// SheetClient appends rows to a spreadsheet-backed webhook. The sheet is an
// operator convenience, not the system of record; callers treat failures as
// best-effort.
type SheetClient struct {
	cfg    SheetConfig
	client *http.Client
}

// NewSheetClient builds a client; an empty webhook URL yields a disabled
// client whose Append returns ErrSheetDisabled.
func NewSheetClient(cfg SheetConfig) *SheetClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SheetClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether the sink is configured.
func (s *SheetClient) Enabled() bool {
	return s != nil && s.cfg.WebhookURL != ""
}

// Append posts a single row to the webhook.
func (s *SheetClient) Append(ctx context.Context, row SheetRow) error {
	if !s.Enabled() {
		return ErrSheetDisabled
	}
	if row.Timestamp == "" {
		row.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("sheets: encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheets: append: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sheets: webhook returned %d", resp.StatusCode)
	}
	return nil
}
