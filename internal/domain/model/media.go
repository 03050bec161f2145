package model

import (
	"errors"
	"fmt"
)

// MediaKind identifies the variant of a cached Payload.
type MediaKind string

const (
	KindVideo      MediaKind = "video"
	KindPhotoAlbum MediaKind = "photo"
)

func (k MediaKind) IsValid() bool {
	switch k {
	case KindVideo, KindPhotoAlbum:
		return true
	default:
		return false
	}
}

func (k MediaKind) String() string {
	return string(k)
}

var (
	// ErrInvalidPayload is the parent of every payload validation error.
	ErrInvalidPayload = errors.New("invalid media payload")

	ErrUnknownKind   = fmt.Errorf("%w: unknown media kind", ErrInvalidPayload)
	ErrMissingFileID = fmt.Errorf("%w: video requires a file reference", ErrInvalidPayload)
	ErrEmptyAlbum    = fmt.Errorf("%w: photo album requires at least one file reference", ErrInvalidPayload)
)

// InlineButton is a single URL button of an inline keyboard.
type InlineButton struct {
	Text string
	URL  string
}

// ReplyMarkup is an inline keyboard attached to a delivered message.
type ReplyMarkup struct {
	InlineKeyboard [][]InlineButton
}

// Clone returns a deep copy. A nil receiver yields nil.
func (m *ReplyMarkup) Clone() *ReplyMarkup {
	if m == nil {
		return nil
	}
	rows := make([][]InlineButton, len(m.InlineKeyboard))
	for i, row := range m.InlineKeyboard {
		rows[i] = append([]InlineButton(nil), row...)
	}
	return &ReplyMarkup{InlineKeyboard: rows}
}

// Payload describes media already delivered to the messaging platform.
// It is a tagged union: Kind selects which of FileID (video) or FileIDs
// (photo album) is meaningful.
//
// Caption is the shared base caption only. Per-recipient parts such as the
// sender line or the user's comment are appended by the caller at send time.
type Payload struct {
	Kind        MediaKind
	FileID      string
	FileIDs     []string
	Caption     string
	ReplyMarkup *ReplyMarkup
}

// NewVideo creates a video payload.
func NewVideo(fileID, caption string, markup *ReplyMarkup) (Payload, error) {
	p := Payload{
		Kind:        KindVideo,
		FileID:      fileID,
		Caption:     caption,
		ReplyMarkup: markup.Clone(),
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// NewPhotoAlbum creates an album payload. File references keep the given order.
func NewPhotoAlbum(fileIDs []string, caption string, markup *ReplyMarkup) (Payload, error) {
	p := Payload{
		Kind:        KindPhotoAlbum,
		FileIDs:     append([]string(nil), fileIDs...),
		Caption:     caption,
		ReplyMarkup: markup.Clone(),
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate checks that the fields required by the payload's kind are present.
func (p Payload) Validate() error {
	switch p.Kind {
	case KindVideo:
		if p.FileID == "" {
			return ErrMissingFileID
		}
	case KindPhotoAlbum:
		if len(p.FileIDs) == 0 {
			return ErrEmptyAlbum
		}
		for _, id := range p.FileIDs {
			if id == "" {
				return ErrEmptyAlbum
			}
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

// Clone returns a deep copy so cached payloads cannot be mutated by callers.
func (p Payload) Clone() Payload {
	c := p
	if p.FileIDs != nil {
		c.FileIDs = append([]string(nil), p.FileIDs...)
	}
	c.ReplyMarkup = p.ReplyMarkup.Clone()
	return c
}

// IsVideo reports whether the payload is a single video.
func (p Payload) IsVideo() bool {
	return p.Kind == KindVideo
}

// MediaSource points at media either already on the platform (FileID)
// or reachable by URL for a first upload.
type MediaSource struct {
	FileID string
	URL    string
}

// SentMedia is what the messaging platform reports after an upload.
// FileIDs holds one reference per delivered item, in delivery order.
type SentMedia struct {
	MessageID int
	FileIDs   []string
}
