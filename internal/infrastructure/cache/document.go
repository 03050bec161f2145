package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// documentJSON is the on-disk layout of a store: a single "videos" mapping
// from key to entry. Entries stay raw until read so one damaged entry does
// not make the whole document unreadable.
type documentJSON struct {
	Videos map[string]json.RawMessage `json:"videos"`
}

// entryJSON wraps a payload with its write time in Unix milliseconds.
type entryJSON struct {
	Data      payloadJSON `json:"data"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// payloadJSON is the JSON representation of a model.Payload.
// Using explicit struct avoids coupling to domain model's field names.
type payloadJSON struct {
	Type        string           `json:"type"`
	FileID      string           `json:"file_id,omitempty"`
	FileIDs     []string         `json:"file_ids,omitempty"`
	Caption     string           `json:"caption"`
	ReplyMarkup *replyMarkupJSON `json:"reply_markup,omitempty"`
}

type replyMarkupJSON struct {
	InlineKeyboard [][]inlineButtonJSON `json:"inline_keyboard"`
}

type inlineButtonJSON struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// decodeDocument parses a stored document.
// Empty input is an empty store. Anything else must be an object whose
// "videos" field is an object; other top-level fields are dropped on rewrite.
func decodeDocument(data []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is null", ErrCorruptDocument)
	}
	raw, ok := top["videos"]
	if !ok {
		return nil, fmt.Errorf("%w: missing videos", ErrCorruptDocument)
	}

	var videos map[string]json.RawMessage
	if err := json.Unmarshal(raw, &videos); err != nil {
		return nil, fmt.Errorf("%w: videos: %v", ErrCorruptDocument, err)
	}
	if videos == nil {
		return nil, fmt.Errorf("%w: videos is null", ErrCorruptDocument)
	}
	return videos, nil
}

// encodeDocument renders the whole document. Captions carry HTML, so HTML
// escaping is turned off to keep the file readable.
func encodeDocument(entries map[string]json.RawMessage) ([]byte, error) {
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(documentJSON{Videos: entries}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeEntry converts a payload and its write time to a raw document entry.
func encodeEntry(p model.Payload, storedAt time.Time) (json.RawMessage, error) {
	e := entryJSON{
		Data: payloadJSON{
			Type:    p.Kind.String(),
			FileID:  p.FileID,
			FileIDs: p.FileIDs,
			Caption: p.Caption,
		},
		Timestamp: storedAt.UnixMilli(),
	}
	if p.ReplyMarkup != nil {
		rows := make([][]inlineButtonJSON, 0, len(p.ReplyMarkup.InlineKeyboard))
		for _, row := range p.ReplyMarkup.InlineKeyboard {
			buttons := make([]inlineButtonJSON, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, inlineButtonJSON{Text: b.Text, URL: b.URL})
			}
			rows = append(rows, buttons)
		}
		e.Data.ReplyMarkup = &replyMarkupJSON{InlineKeyboard: rows}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

// decodeEntry converts a raw document entry back to a payload.
// The payload is validated so callers never see a half-filled variant.
// A missing timestamp yields the zero time.
func decodeEntry(raw json.RawMessage) (model.Payload, time.Time, error) {
	var e entryJSON
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.Payload{}, time.Time{}, err
	}

	p := model.Payload{
		Kind:    model.MediaKind(e.Data.Type),
		FileID:  e.Data.FileID,
		FileIDs: e.Data.FileIDs,
		Caption: e.Data.Caption,
	}
	if e.Data.ReplyMarkup != nil {
		markup := &model.ReplyMarkup{
			InlineKeyboard: make([][]model.InlineButton, 0, len(e.Data.ReplyMarkup.InlineKeyboard)),
		}
		for _, row := range e.Data.ReplyMarkup.InlineKeyboard {
			buttons := make([]model.InlineButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, model.InlineButton{Text: b.Text, URL: b.URL})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
		}
		p.ReplyMarkup = markup
	}

	if err := p.Validate(); err != nil {
		return model.Payload{}, time.Time{}, err
	}

	var storedAt time.Time
	if e.Timestamp > 0 {
		storedAt = time.UnixMilli(e.Timestamp)
	}
	return p, storedAt, nil
}
