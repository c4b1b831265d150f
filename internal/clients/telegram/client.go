// Package telegram sends bot messages and decodes webhook updates.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Client wraps a bot API handle. Messages are sent as HTML.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient authorizes the bot against the public API.
func NewClient(token string) (*Client, error) {
	return NewClientWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{})
}

// NewClientWithEndpoint authorizes against another API endpoint, in the
// "https://host/bot%s/%s" form tgbotapi expects.
func NewClientWithEndpoint(token, endpoint string, httpClient *http.Client) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = false
	log.Infof("telegram bot authorized as @%s", bot.Self.UserName)
	return &Client{bot: bot}, nil
}

func (c *Client) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

// SetWebhook registers url as the bot's update endpoint.
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("telegram webhook config: %w", err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("telegram set webhook: %w", err)
	}
	return nil
}

// LogClient stands in when no bot token is configured: it logs what would
// have been sent and reports success. Callers that deduplicate on success
// (scheduled nudges) therefore mark those messages as sent even though no
// chat received them.
type LogClient struct{}

const logPreviewRunes = 80

func (LogClient) SendMessage(_ context.Context, chatID int64, text string) error {
	log.WithField("chatId", chatID).Infof("telegram disabled, would send: %s", preview(text, logPreviewRunes))
	return nil
}

// preview cuts text to at most n runes.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// IncomingMessage is the part of an update the bot acts on.
type IncomingMessage struct {
	ChatID int64
	Text   string
}

// ParseUpdate decodes a webhook body. Edited messages are treated like new
// ones; updates without a message return ok=false.
func ParseUpdate(body io.Reader) (msg IncomingMessage, ok bool, err error) {
	var upd tgbotapi.Update
	if err = json.NewDecoder(body).Decode(&upd); err != nil {
		return IncomingMessage{}, false, fmt.Errorf("telegram update: %w", err)
	}
	m := upd.Message
	if m == nil {
		m = upd.EditedMessage
	}
	if m == nil || m.Chat == nil {
		return IncomingMessage{}, false, nil
	}
	return IncomingMessage{ChatID: m.Chat.ID, Text: m.Text}, true, nil
}
