package alert

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends operator alerts to a fixed admin chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot and returns an alerter bound to chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("INFO: Alert bot authorized on account %s", bot.Self.UserName)

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// CrisisEscalation posts an escalation notice to the admin chat.
func (t *Telegram) CrisisEscalation(userID string, crisisEvents int) {
	text := fmt.Sprintf(
		"⚠️ Crisis escalation: user %s has %d crisis events in the last hour. Manual review required.",
		userID, crisisEvents)
	t.send(text)
}

// QuotaExhausted posts a quota failure notice to the admin chat.
func (t *Telegram) QuotaExhausted(detail string) {
	t.send("💳 LLM gateway quota exhausted, safety classifier running fail-open: " + detail)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send operator alert: %v", err)
	}
}
