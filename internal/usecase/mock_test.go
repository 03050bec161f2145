package usecase

import (
	"context"
	"sync"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// messengerCall records one call made to mockMessenger.
type messengerCall struct {
	method    string
	messageID int
	text      string
	srcs      []model.MediaSource
	markup    *model.ReplyMarkup
}

// mockMessenger provides a configurable mock for Messenger.
// Every call is recorded in order.
type mockMessenger struct {
	mu    sync.Mutex
	calls []messengerCall

	sendTextFn      func(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	editTextFn      func(ctx context.Context, chatID int64, messageID int, text string) error
	deleteMessageFn func(ctx context.Context, chatID int64, messageID int) error
	sendVideoFn     func(ctx context.Context, chatID int64, src model.MediaSource, caption string, markup *model.ReplyMarkup) (*model.SentMedia, error)
	sendAlbumFn     func(ctx context.Context, chatID int64, srcs []model.MediaSource, caption string) (*model.SentMedia, error)
	editCaptionFn   func(ctx context.Context, chatID int64, messageID int, caption string, markup *model.ReplyMarkup) error
}

func (m *mockMessenger) record(c messengerCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// callsTo returns the recorded calls of one method.
func (m *mockMessenger) callsTo(method string) []messengerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []messengerCall
	for _, c := range m.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockMessenger) SendText(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	m.record(messengerCall{method: "SendText", text: text})
	if m.sendTextFn != nil {
		return m.sendTextFn(ctx, chatID, replyTo, text)
	}
	return 500, nil
}

func (m *mockMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	m.record(messengerCall{method: "EditText", messageID: messageID, text: text})
	if m.editTextFn != nil {
		return m.editTextFn(ctx, chatID, messageID, text)
	}
	return nil
}

func (m *mockMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.record(messengerCall{method: "DeleteMessage", messageID: messageID})
	if m.deleteMessageFn != nil {
		return m.deleteMessageFn(ctx, chatID, messageID)
	}
	return nil
}

func (m *mockMessenger) SendVideo(ctx context.Context, chatID int64, src model.MediaSource, caption string, markup *model.ReplyMarkup) (*model.SentMedia, error) {
	m.record(messengerCall{method: "SendVideo", text: caption, srcs: []model.MediaSource{src}, markup: markup})
	if m.sendVideoFn != nil {
		return m.sendVideoFn(ctx, chatID, src, caption, markup)
	}
	id := src.FileID
	if id == "" {
		id = "uploaded-video"
	}
	return &model.SentMedia{MessageID: 600, FileIDs: []string{id}}, nil
}

func (m *mockMessenger) SendAlbum(ctx context.Context, chatID int64, srcs []model.MediaSource, caption string) (*model.SentMedia, error) {
	m.record(messengerCall{method: "SendAlbum", text: caption, srcs: srcs})
	if m.sendAlbumFn != nil {
		return m.sendAlbumFn(ctx, chatID, srcs, caption)
	}
	ids := make([]string, len(srcs))
	for i, src := range srcs {
		ids[i] = src.FileID
		if ids[i] == "" {
			ids[i] = "uploaded-" + src.URL
		}
	}
	return &model.SentMedia{MessageID: 700, FileIDs: ids}, nil
}

func (m *mockMessenger) EditCaption(ctx context.Context, chatID int64, messageID int, caption string, markup *model.ReplyMarkup) error {
	m.record(messengerCall{method: "EditCaption", messageID: messageID, text: caption, markup: markup})
	if m.editCaptionFn != nil {
		return m.editCaptionFn(ctx, chatID, messageID, caption, markup)
	}
	return nil
}

// mockExtractor provides a configurable mock for Extractor.
type mockExtractor struct {
	resolveFn       func(ctx context.Context, url string) (*model.Resolution, error)
	fetchMetadataFn func(ctx context.Context, url string) (*model.Metadata, error)
}

func (m *mockExtractor) Resolve(ctx context.Context, url string) (*model.Resolution, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, url)
	}
	return &model.Resolution{
		ContentID: "7300000000000000001",
		Platform:  "tiktok",
		Kind:      model.KindVideo,
		VideoURL:  "https://cdn.example.com/v.mp4",
	}, nil
}

func (m *mockExtractor) FetchMetadata(ctx context.Context, url string) (*model.Metadata, error) {
	if m.fetchMetadataFn != nil {
		return m.fetchMetadataFn(ctx, url)
	}
	return &model.Metadata{Author: model.Author{UniqueID: "cook"}}, nil
}

// mockAnalyzer provides a configurable mock for VideoAnalyzer.
type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, videoURL string) (*model.VideoStats, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, videoURL string) (*model.VideoStats, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, videoURL)
	}
	return &model.VideoStats{FPS: 30, SizeMB: "1.50 MB"}, nil
}

// mockMediaCache is an in-memory MediaCache with injectable failures.
type mockMediaCache struct {
	mu      sync.Mutex
	entries map[string]model.Payload
	sets    []string
	// journal, when set, is shared between caches to observe write order.
	journal *[]string
	name    string

	getErr error
	setErr error
}

func newMockMediaCache() *mockMediaCache {
	return &mockMediaCache{entries: make(map[string]model.Payload)}
}

func (m *mockMediaCache) Get(_ context.Context, key string) (*model.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (m *mockMediaCache) Set(_ context.Context, key string, payload model.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, key)
	if m.journal != nil {
		*m.journal = append(*m.journal, m.name+":"+key)
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = payload.Clone()
	return nil
}

func (m *mockMediaCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mockMediaCache) Len(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// mockLinkQueue provides a configurable mock for LinkQueue.
type mockLinkQueue struct {
	published []repository.LinkTask

	publishFn func(ctx context.Context, task repository.LinkTask) error
}

func (m *mockLinkQueue) PublishLinkTask(ctx context.Context, task repository.LinkTask) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, task); err != nil {
			return err
		}
	}
	m.published = append(m.published, task)
	return nil
}

func (m *mockLinkQueue) ConsumeLinkTasks(ctx context.Context, handler func(task repository.LinkTask) error) error {
	return nil
}

func (m *mockLinkQueue) Close() error {
	return nil
}
