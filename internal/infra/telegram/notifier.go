package telegram

import (
	"fmt"
	"strings"

	"supplychain_backoffice/internal/domain/alert"

	"gopkg.in/telebot.v3"
)

// Notifier pushes critical deadline notifications to the ops Telegram chat.
// It is send-only: the bot is never started as a poller.
type Notifier struct {
	bot    *telebot.Bot
	chatID int64
}

func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

func (n *Notifier) Notify(notification *alert.Notification) error {
	text := fmt.Sprintf("[%s] %s", strings.ToUpper(string(notification.Severity)), notification.Message)
	_, err := n.bot.Send(&telebot.Chat{ID: n.chatID}, text, &telebot.SendOptions{ParseMode: telebot.ModeDefault})
	if err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
