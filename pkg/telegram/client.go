package telegram

import (
	"errors"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Telegram limit for one message.
const MaxMessageLength = 4096

// ErrMissingCredentials is returned when the bot token or chat id is empty.
var ErrMissingCredentials = errors.New("telegram bot token and chat id are required")

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	return NewClientWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint, &http.Client{})
}

// NewClientWithEndpoint creates a client against a custom API endpoint
// in the "https://host/bot%s/%s" format.
func NewClientWithEndpoint(botToken string, chatID int64, endpoint string, httpClient *http.Client) (Notifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, ErrMissingCredentials
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, httpClient)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends text as HTML, split into several messages when it is too long.
func (c *client) SendMessage(text string) error {
	for _, part := range SplitMessage(text, MaxMessageLength) {
		msg := tgbotapi.NewMessage(c.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Discard is a Notifier that drops every message.
type Discard struct{}

func (Discard) SendMessage(string) error { return nil }
