// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotNotifier delivers keeper notices to a Telegram chat using the
// gopkg.in/telebot.v3 library. It implements notify.Notifier.
type TelebotNotifier struct {
	bot    *telebot.Bot
	chatID int64
}

func NewTelebotNotifier(token string, chatID int64) (*TelebotNotifier, error) {
	// Outbound sends only; no poller needed.
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &TelebotNotifier{bot: bot, chatID: chatID}, nil
}

// Notify sends a text message to the configured chat.
func (n *TelebotNotifier) Notify(text string) error {
	_, err := n.bot.Send(&telebot.Chat{ID: n.chatID}, text)
	return err
}
