package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mtfscanner/internal/model"
	"mtfscanner/internal/timeutil"
)

const telegramAPIBaseURL = "https://api.telegram.org"

type telegramAPIBasicResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Telegram sends plain-text alerts to one chat via the raw Bot API
// (no SDK, matching the teacher's internal/ledger telegram_*.go files).
type Telegram struct {
	BotToken string
	ChatID   string
	Client   *http.Client
	TZ       *timeutil.Converter
}

func NewTelegram(botToken, chatID string, tz *timeutil.Converter) *Telegram {
	return &Telegram{BotToken: botToken, ChatID: chatID, Client: &http.Client{Timeout: 20 * time.Second}, TZ: tz}
}

func (t *Telegram) SignalAlert(ctx context.Context, s model.Signal) error {
	msg := fmt.Sprintf("New signal: %s %s\nEntry: %s  SL: %s  TP: %s\nRR: %s\nStrategy: %s",
		s.Alias, s.Direction, s.EntryPrice, s.InitialSL, s.InitialTP, s.EstimatedRR, s.StrategyName)
	return t.send(ctx, msg)
}

func (t *Telegram) UpdateAlert(ctx context.Context, tr model.Trade, reason string) error {
	msg := fmt.Sprintf("Trade #%d updated: %s\nSL: %s  TP: %s", tr.ID, reason, tr.StopLoss, tr.TakeProfit)
	return t.send(ctx, msg)
}

func (t *Telegram) CloseAlert(ctx context.Context, tr model.Trade, closeType string) error {
	msg := fmt.Sprintf("Trade #%d closed: %s (%s)", tr.ID, closeType, tr.Alias)
	return t.send(ctx, msg)
}

func (t *Telegram) Heartbeat(ctx context.Context, at time.Time) error {
	return t.send(ctx, fmt.Sprintf("Heartbeat %s", t.TZ.Format(at, time.RFC3339)))
}

func (t *Telegram) ErrorAlert(ctx context.Context, severity, component, message string) error {
	return t.send(ctx, fmt.Sprintf("[%s] %s: %s", severity, component, message))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	return t.callJSON(ctx, "sendMessage", map[string]any{
		"chat_id": t.ChatID,
		"text":    text,
	})
}

func (t *Telegram) callJSON(ctx context.Context, method string, payload any) error {
	if strings.TrimSpace(t.BotToken) == "" {
		return errors.New("telegram bot token is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed telegramAPIBasicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return err
	}
	if !parsed.OK {
		desc := strings.TrimSpace(parsed.Description)
		if desc == "" {
			desc = "telegram request failed"
		}
		return errors.New(desc)
	}
	return nil
}

func (t *Telegram) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", telegramAPIBaseURL, strings.TrimSpace(t.BotToken), strings.TrimSpace(method))
}
