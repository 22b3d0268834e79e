package notify

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

// ErrTelegramDisabled signals that the approval channel is not configured.
var ErrTelegramDisabled = errors.New("telegram: channel disabled")

const (
	telegramAPIBase = "https://api.telegram.org"

	// Callback data prefixes carried by the inline keyboard buttons.
	CallbackApprovePrefix = "approve_"
	CallbackRejectPrefix  = "reject_"
)

// TelegramConfig holds bot credentials and the target approval chat.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string // overridable for tests
	Timeout  time.Duration
}

// TelegramClient pushes approval prompts to the manual-review chat and edits
// them once a decision lands.
type TelegramClient struct {
	cfg    TelegramConfig
	client *http.Client
}

// NewTelegramClient builds a client; an empty token or chat id yields a
// disabled client whose calls return ErrTelegramDisabled.
func NewTelegramClient(cfg TelegramConfig) *TelegramClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = telegramAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TelegramClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether the approval channel is configured.
func (t *TelegramClient) Enabled() bool {
	return t != nil && t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

// ApprovalPrompt carries the fields rendered into an approval request message.
type ApprovalPrompt struct {
	Name      string
	Email     string
	Phone     string
	PendingID string
	Reminder  bool
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type sendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

type editMessageRequest struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendApprovalRequest posts a decision prompt with Accept/Reject buttons
// keyed by the pending registrant's identifier.
func (t *TelegramClient) SendApprovalRequest(ctx context.Context, prompt ApprovalPrompt) error {
	if !t.Enabled() {
		return ErrTelegramDisabled
	}

	header := "New approval request"
	if prompt.Reminder {
		header = "Reminder: approval still pending"
	}

	text := fmt.Sprintf("%s\n\nName: %s\nEmail: %s\nPhone: %s",
		header, prompt.Name, prompt.Email, prompt.Phone)

	req := sendMessageRequest{
		ChatID: t.cfg.ChatID,
		Text:   text,
		ReplyMarkup: &inlineKeyboard{
			InlineKeyboard: [][]inlineButton{{
				{Text: "Accept", CallbackData: CallbackApprovePrefix + prompt.PendingID},
				{Text: "Reject", CallbackData: CallbackRejectPrefix + prompt.PendingID},
			}},
		},
	}

	return t.post(ctx, "sendMessage", req)
}

// SendDecisionEdit rewrites the original prompt after a decision so the chat
// shows the outcome instead of live buttons.
func (t *TelegramClient) SendDecisionEdit(ctx context.Context, chatID string, messageID int64, text string) error {
	if !t.Enabled() {
		return ErrTelegramDisabled
	}
	if chatID == "" {
		chatID = t.cfg.ChatID
	}

	return t.post(ctx, "editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
}

func (t *TelegramClient) post(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(t.cfg.BaseURL, "/"), t.cfg.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram: %s rejected: %s", method, decoded.Description)
	}
	return nil
}
