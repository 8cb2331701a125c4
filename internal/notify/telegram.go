// Package notify delivers alerts to the approval channel and polls it
// for inbound operator commands.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// TelegramClient is a minimal Telegram Bot API client covering the
// three calls the approval channel needs: sendMessage, getUpdates, and
// answerCallbackQuery.
type TelegramClient struct {
	apiBase    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTelegramClient constructs a client for the given bot token and
// chat. apiBase overrides the Telegram endpoint for tests; empty uses
// the production API.
func NewTelegramClient(apiBase, token, chatID string, logger *zap.Logger) *TelegramClient {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramClient{
		apiBase:    apiBase,
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 40 * time.Second},
		logger:     logger,
	}
}

// Button is one inline keyboard button.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Update is one inbound event from getUpdates.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message,omitempty"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	} `json:"callback_query,omitempty"`
}

// SendMessage posts a Markdown-formatted message to the configured chat.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	return c.send(ctx, text, nil)
}

// SendWithKeyboard posts a message with an inline keyboard attached.
func (c *TelegramClient) SendWithKeyboard(ctx context.Context, text string, keyboard [][]Button) error {
	return c.send(ctx, text, keyboard)
}

func (c *TelegramClient) send(ctx context.Context, text string, keyboard [][]Button) error {
	payload := map[string]any{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = map[string]any{"inline_keyboard": keyboard}
	}
	if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
		MessagesFailedTotal.Inc()
		return err
	}
	MessagesSentTotal.Inc()
	return nil
}

// GetUpdates long-polls for inbound messages and callbacks past the
// given offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}

	var out struct {
		Result []Update `json:"result"`
	}
	if err := c.call(ctx, "getUpdates", payload, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// AnswerCallback acknowledges a button press so the client stops
// showing a spinner.
func (c *TelegramClient) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

func (c *TelegramClient) call(ctx context.Context, method string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("call %s: status %d: %s", method, resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", method, err)
		}
	}
	return nil
}
