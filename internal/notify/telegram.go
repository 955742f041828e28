package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type telegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramTimeout bounds every Bot API request, including the getMe call
// made when the bot is created.
const telegramTimeout = 20 * time.Second

var newTelegramBot = func(token string) (telegramBot, error) {
	return tgbotapi.NewBotAPIWithClient(token, &http.Client{Timeout: telegramTimeout})
}

// TelegramSender posts notifications to one chat. The bot is created on
// first use so a bad token does not block startup.
type TelegramSender struct {
	token  string
	chatID int64

	mu  sync.Mutex
	bot telegramBot
}

func NewTelegramSender(token string, chatID int64) *TelegramSender {
	return &TelegramSender{token: token, chatID: chatID}
}

func (t *TelegramSender) Name() string { return "telegram" }

func (t *TelegramSender) Send(_ context.Context, msg Message) error {
	bot, err := t.client()
	if err != nil {
		return err
	}
	m := tgbotapi.NewMessage(t.chatID, msg.Subject+"\n\n"+msg.Text)
	m.DisableWebPagePreview = true
	if _, err := bot.Send(m); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *TelegramSender) client() (telegramBot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := newTelegramBot(t.token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	t.bot = bot
	return bot, nil
}
