package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// UpdateSource is the subset of *tgbotapi.BotAPI used for long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// MessageHandler processes one inbound chat message.
type MessageHandler func(ctx context.Context, msg model.InboundMessage)

// Poller receives chat messages through getUpdates long polling.
type Poller struct {
	source  UpdateSource
	timeout int
}

// NewPoller creates a poller. timeoutSeconds is the long-poll wait per request.
func NewPoller(source UpdateSource, timeoutSeconds int) *Poller {
	return &Poller{source: source, timeout: timeoutSeconds}
}

// Run delivers text messages to handle until ctx is canceled or the update
// channel closes. Handlers run sequentially in arrival order.
func (p *Poller) Run(ctx context.Context, handle MessageHandler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message"}

	updates := p.source.GetUpdatesChan(cfg)
	defer p.source.StopReceivingUpdates()

	slog.Info("telegram polling started", "timeout_seconds", p.timeout)

	for {
		select {
		case <-ctx.Done():
			slog.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := toInboundMessage(update)
			if !ok {
				continue
			}
			handle(ctx, msg)
		}
	}
}

func toInboundMessage(update tgbotapi.Update) (model.InboundMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return model.InboundMessage{}, false
	}
	msg := model.InboundMessage{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.From != nil {
		msg.Sender = model.Sender{
			Username:  m.From.UserName,
			FirstName: m.From.FirstName,
			LastName:  m.From.LastName,
		}
	}
	return msg, true
}
