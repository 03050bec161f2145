package repository

import (
	"context"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// Messenger is the messaging platform the relay delivers media to.
// Captions are HTML formatted.
type Messenger interface {
	// SendText posts a plain text message, optionally as a reply, and returns its message ID.
	SendText(ctx context.Context, chatID int64, replyTo int, text string) (int, error)

	// EditText replaces the text of an earlier message.
	EditText(ctx context.Context, chatID int64, messageID int, text string) error

	// DeleteMessage removes a message from the chat.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// SendVideo delivers a single video, either by file reference or by URL.
	SendVideo(ctx context.Context, chatID int64, src model.MediaSource, caption string, markup *model.ReplyMarkup) (*model.SentMedia, error)

	// SendAlbum delivers photos as media groups. The caption is attached to the first item.
	// The returned SentMedia refers to the first message and lists every file reference in order.
	SendAlbum(ctx context.Context, chatID int64, srcs []model.MediaSource, caption string) (*model.SentMedia, error)

	// EditCaption replaces the caption (and keyboard) of a media message.
	EditCaption(ctx context.Context, chatID int64, messageID int, caption string, markup *model.ReplyMarkup) error
}
