// Package telegram adapts the Telegram Bot API to the relay's messaging interfaces.
package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// MaxAlbumSize is the largest media group Telegram accepts in one request.
const MaxAlbumSize = 10

// DefaultAPIEndpoint is the public Bot API endpoint format.
const DefaultAPIEndpoint = tgbotapi.APIEndpoint

// ClientConfig holds configuration for the Bot API client.
type ClientConfig struct {
	Token string
	// APIEndpoint is a format string taking the token and method, for self-hosted Bot API servers.
	APIEndpoint string
}

// NewBotAPI creates an authenticated Bot API client.
func NewBotAPI(cfg ClientConfig) (*tgbotapi.BotAPI, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return bot, nil
}

// BotAPI is the subset of *tgbotapi.BotAPI used to deliver messages.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// Messenger implements repository.Messenger on top of the Bot API.
type Messenger struct {
	bot BotAPI
}

var _ repository.Messenger = (*Messenger)(nil)

// NewMessenger creates a new Messenger.
func NewMessenger(bot BotAPI) *Messenger {
	return &Messenger{bot: bot}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	sent, err := m.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

func (m *Messenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", messageID, err)
	}
	return nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

func (m *Messenger) SendVideo(ctx context.Context, chatID int64, src model.MediaSource, caption string, markup *model.ReplyMarkup) (*model.SentMedia, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := requestFile(src)
	if err != nil {
		return nil, err
	}

	video := tgbotapi.NewVideo(chatID, file)
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeHTML
	if kb := inlineKeyboard(markup); kb != nil {
		video.ReplyMarkup = *kb
	}

	sent, err := m.bot.Send(video)
	if err != nil {
		return nil, fmt.Errorf("failed to send video: %w", err)
	}
	if sent.Video == nil || sent.Video.FileID == "" {
		return nil, errors.New("telegram response carries no video")
	}
	return &model.SentMedia{MessageID: sent.MessageID, FileIDs: []string{sent.Video.FileID}}, nil
}

func (m *Messenger) SendAlbum(ctx context.Context, chatID int64, srcs []model.MediaSource, caption string) (*model.SentMedia, error) {
	if len(srcs) == 0 {
		return nil, errors.New("album has no media")
	}

	result := &model.SentMedia{}
	for start := 0; start < len(srcs); start += MaxAlbumSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+MaxAlbumSize, len(srcs))
		group := make([]interface{}, 0, end-start)
		for i, src := range srcs[start:end] {
			file, err := requestFile(src)
			if err != nil {
				return nil, err
			}
			photo := tgbotapi.NewInputMediaPhoto(file)
			if start == 0 && i == 0 {
				photo.Caption = caption
				photo.ParseMode = tgbotapi.ModeHTML
			}
			group = append(group, photo)
		}

		sent, err := m.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, group))
		if err != nil {
			return nil, fmt.Errorf("failed to send album items %d-%d: %w", start+1, end, err)
		}
		for _, msg := range sent {
			if result.MessageID == 0 {
				result.MessageID = msg.MessageID
			}
			if id := largestPhoto(msg.Photo); id != "" {
				result.FileIDs = append(result.FileIDs, id)
			}
		}
	}

	// A short album must not be cached as if it were complete.
	if len(result.FileIDs) != len(srcs) {
		return nil, fmt.Errorf("telegram returned %d photos for %d album items", len(result.FileIDs), len(srcs))
	}
	return result, nil
}

func (m *Messenger) EditCaption(ctx context.Context, chatID int64, messageID int, caption string, markup *model.ReplyMarkup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = inlineKeyboard(markup)
	if _, err := m.bot.Request(edit); err != nil {
		return fmt.Errorf("failed to edit caption of message %d: %w", messageID, err)
	}
	return nil
}

func requestFile(src model.MediaSource) (tgbotapi.RequestFileData, error) {
	switch {
	case src.FileID != "":
		return tgbotapi.FileID(src.FileID), nil
	case src.URL != "":
		return tgbotapi.FileURL(src.URL), nil
	default:
		return nil, errors.New("media source has neither file ID nor URL")
	}
}

func inlineKeyboard(markup *model.ReplyMarkup) *tgbotapi.InlineKeyboardMarkup {
	if markup == nil || len(markup.InlineKeyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(markup.InlineKeyboard))
	for _, row := range markup.InlineKeyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
		}
		rows = append(rows, buttons)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// largestPhoto picks the highest resolution rendition Telegram generated.
func largestPhoto(sizes []tgbotapi.PhotoSize) string {
	best := -1
	var id string
	for _, s := range sizes {
		if area := s.Width * s.Height; area > best {
			best = area
			id = s.FileID
		}
	}
	return id
}
