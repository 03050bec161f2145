package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/cliprelay/internal/caption"
	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/cache"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/extractor"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/metrics"
)

const (
	// DefaultMaxRetries is the default number of redeliveries before a task is dropped.
	DefaultMaxRetries = 3

	musicButtonText = "🎵 Download Track"
)

// RelayServiceConfig holds configuration for RelayService.
type RelayServiceConfig struct {
	// MaxRetries is how many times a task whose failure could not be reported is redelivered.
	MaxRetries int
	// Now is the clock used for processing times. Defaults to time.Now.
	Now func() time.Time
}

// DefaultRelayServiceConfig returns the default configuration.
func DefaultRelayServiceConfig() RelayServiceConfig {
	return RelayServiceConfig{
		MaxRetries: DefaultMaxRetries,
		Now:        time.Now,
	}
}

// RelayService delivers the media behind a detected link to the chat.
type RelayService interface {
	// ProcessLink relays one link task.
	// Pipeline failures are reported to the chat and yield nil.
	// An error is returned only when the failure could not be reported,
	// so the queue redelivers the task.
	ProcessLink(ctx context.Context, task repository.LinkTask) error
}

// Caches groups the two key spaces of the content cache.
type Caches struct {
	// URLs maps the raw share URL to delivered media.
	URLs cache.MediaCache
	// ContentIDs maps the resolved content ID to delivered media.
	ContentIDs cache.MediaCache
}

type relayService struct {
	messenger  repository.Messenger
	extractor  repository.Extractor
	analyzer   repository.VideoAnalyzer
	urls       cache.MediaCache
	contentIDs cache.MediaCache
	sfGroup    singleflight.Group

	maxRetries int
	now        func() time.Time
}

// NewRelayService creates a new RelayService.
// analyzer may be nil, in which case videos are captioned without FPS and size.
func NewRelayService(
	messenger repository.Messenger,
	ext repository.Extractor,
	analyzer repository.VideoAnalyzer,
	caches Caches,
	cfg RelayServiceConfig,
) RelayService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &relayService{
		messenger:  messenger,
		extractor:  ext,
		analyzer:   analyzer,
		urls:       caches.URLs,
		contentIDs: caches.ContentIDs,
		maxRetries: cfg.MaxRetries,
		now:        now,
	}
}

// relayRun is the state of one pipeline execution.
type relayRun struct {
	task     repository.LinkTask
	start    time.Time
	personal string
	// waitingID is the status message to edit on failure, 0 once it is gone.
	waitingID int
}

func (s *relayService) ProcessLink(ctx context.Context, task repository.LinkTask) error {
	// A first delivery always runs; only redeliveries count against the limit.
	if task.RetryCount > 0 && task.RetryCount >= s.maxRetries {
		slog.Error("dropping link task after max retries",
			"task_id", task.ID,
			"chat_id", task.ChatID,
			"url", task.URL,
			"retry_count", task.RetryCount,
		)
		metrics.RelayOutcomesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil
	}

	run := &relayRun{
		task:     task,
		start:    s.now(),
		personal: caption.Personal(task.Sender, task.Comment),
	}

	outcome, err := s.relay(ctx, run)
	if err == nil {
		metrics.RelayOutcomesTotal.WithLabelValues(outcome).Inc()
		slog.Info("link relayed",
			"task_id", task.ID,
			"chat_id", task.ChatID,
			"outcome", outcome,
			"duration_ms", s.now().Sub(run.start).Milliseconds(),
		)
		return nil
	}

	metrics.RelayOutcomesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	slog.Error("link relay failed",
		"task_id", task.ID,
		"chat_id", task.ChatID,
		"url", task.URL,
		"error", err,
	)
	return s.reportFailure(ctx, run, err)
}

func (s *relayService) relay(ctx context.Context, run *relayRun) (string, error) {
	chatID := run.task.ChatID

	s.deleteQuietly(ctx, chatID, run.task.MessageID)

	if payload := s.lookup(ctx, s.urls, "urls", run.task.URL); payload != nil {
		if err := s.sendCached(ctx, chatID, *payload, run.personal); err != nil {
			return "", fmt.Errorf("send cached media: %w", err)
		}
		return metrics.OutcomeURLHit, nil
	}

	waitingID, err := s.messenger.SendText(ctx, chatID, 0, caption.Waiting)
	if err != nil {
		return "", fmt.Errorf("post status message: %w", err)
	}
	run.waitingID = waitingID

	res, err := s.resolve(ctx, run.task.URL)
	if err != nil {
		return "", err
	}

	if payload := s.lookup(ctx, s.contentIDs, "content_ids", res.ContentID); payload != nil {
		if err := s.sendCached(ctx, chatID, *payload, run.personal); err != nil {
			return "", fmt.Errorf("send cached media: %w", err)
		}
		s.dropWaiting(ctx, run)
		if err := s.urls.Set(ctx, run.task.URL, *payload); err != nil {
			slog.Warn("failed to backfill url cache",
				"url", run.task.URL,
				"content_id", res.ContentID,
				"error", err,
			)
		}
		return metrics.OutcomeContentIDHit, nil
	}

	sent, err := s.upload(ctx, chatID, res)
	if err != nil {
		return "", err
	}
	s.dropWaiting(ctx, run)

	meta, err := s.extractor.FetchMetadata(ctx, run.task.URL)
	if err != nil {
		// The media is already delivered; only the rich caption and caching are lost.
		slog.Error("failed to fetch metadata",
			"url", run.task.URL,
			"content_id", res.ContentID,
			"error", err,
		)
		if err := s.messenger.EditCaption(ctx, chatID, sent.MessageID, caption.Cached("", run.personal), nil); err != nil {
			slog.Warn("failed to clear loading caption", "message_id", sent.MessageID, "error", err)
		}
		return metrics.OutcomeUploaded, nil
	}

	var tech *model.VideoStats
	var markup *model.ReplyMarkup
	if res.Kind == model.KindVideo {
		progress := caption.Analyzing(caption.Build(*meta, nil), run.personal)
		if err := s.messenger.EditCaption(ctx, chatID, sent.MessageID, progress, nil); err != nil {
			slog.Warn("failed to show analysis progress", "message_id", sent.MessageID, "error", err)
		}
		tech = s.analyze(ctx, res.VideoURL)
		markup = musicButton(meta.MusicURL)
	}

	base := caption.Build(*meta, tech)
	final := caption.Final(base, run.personal, s.now().Sub(run.start))
	if err := s.messenger.EditCaption(ctx, chatID, sent.MessageID, final, markup); err != nil {
		return "", fmt.Errorf("set final caption: %w", err)
	}

	payload, err := newPayload(res.Kind, sent, base, markup)
	if err != nil {
		return "", fmt.Errorf("build cache payload: %w", err)
	}
	s.store(ctx, s.contentIDs, "content_ids", res.ContentID, payload)
	s.store(ctx, s.urls, "urls", run.task.URL, payload)

	return metrics.OutcomeUploaded, nil
}

// resolve coalesces concurrent resolutions of the same link.
// The shared call outlives any single caller; the extractor's own timeout
// bounds it.
func (s *relayService) resolve(ctx context.Context, url string) (*model.Resolution, error) {
	detached := context.WithoutCancel(ctx)
	result, err, wasShared := s.sfGroup.Do(url, func() (any, error) {
		return s.extractor.Resolve(detached, url)
	})

	if wasShared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	res, _ := result.(*model.Resolution)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *relayService) upload(ctx context.Context, chatID int64, res *model.Resolution) (*model.SentMedia, error) {
	switch res.Kind {
	case model.KindVideo:
		sent, err := s.messenger.SendVideo(ctx, chatID, model.MediaSource{URL: res.VideoURL}, caption.Loading, nil)
		if err != nil {
			return nil, fmt.Errorf("upload video: %w", err)
		}
		return sent, nil
	case model.KindPhotoAlbum:
		srcs := make([]model.MediaSource, len(res.ImageURLs))
		for i, u := range res.ImageURLs {
			srcs[i] = model.MediaSource{URL: u}
		}
		sent, err := s.messenger.SendAlbum(ctx, chatID, srcs, caption.Loading)
		if err != nil {
			return nil, fmt.Errorf("upload album: %w", err)
		}
		return sent, nil
	default:
		return nil, model.ErrUnsupportedContent
	}
}

func (s *relayService) analyze(ctx context.Context, videoURL string) *model.VideoStats {
	if s.analyzer == nil {
		return nil
	}
	stats, err := s.analyzer.Analyze(ctx, videoURL)
	if err != nil {
		slog.Warn("video analysis failed", "video_url", videoURL, "error", err)
		return nil
	}
	return stats
}

// sendCached re-sends delivered media with the recipient's own caption tail.
func (s *relayService) sendCached(ctx context.Context, chatID int64, p model.Payload, personal string) error {
	text := caption.Cached(p.Caption, personal)
	if p.IsVideo() {
		_, err := s.messenger.SendVideo(ctx, chatID, model.MediaSource{FileID: p.FileID}, text, p.ReplyMarkup)
		return err
	}
	srcs := make([]model.MediaSource, len(p.FileIDs))
	for i, id := range p.FileIDs {
		srcs[i] = model.MediaSource{FileID: id}
	}
	_, err := s.messenger.SendAlbum(ctx, chatID, srcs, text)
	return err
}

// lookup reads a cache, treating faults as misses.
func (s *relayService) lookup(ctx context.Context, c cache.MediaCache, store, key string) *model.Payload {
	payload, err := c.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed, treating as miss",
			"store", store,
			"key", key,
			"error", err,
		)
		return nil
	}
	if payload != nil {
		slog.Debug("cache hit", "store", store, "key", key)
	}
	return payload
}

func (s *relayService) store(ctx context.Context, c cache.MediaCache, store, key string, p model.Payload) {
	if err := c.Set(ctx, key, p); err != nil {
		slog.Error("failed to cache media",
			"store", store,
			"key", key,
			"error", err,
		)
	}
}

// deleteQuietly removes a message; missing delete rights must not stop the relay.
func (s *relayService) deleteQuietly(ctx context.Context, chatID int64, messageID int) {
	if err := s.messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		slog.Warn("failed to delete message",
			"chat_id", chatID,
			"message_id", messageID,
			"error", err,
		)
	}
}

func (s *relayService) dropWaiting(ctx context.Context, run *relayRun) {
	s.deleteQuietly(ctx, run.task.ChatID, run.waitingID)
	run.waitingID = 0
}

// reportFailure tells the chat what went wrong, preferring to reuse the status message.
func (s *relayService) reportFailure(ctx context.Context, run *relayRun, cause error) error {
	text := caption.Error(errorDetail(cause), s.now().Sub(run.start))

	if run.waitingID != 0 {
		err := s.messenger.EditText(ctx, run.task.ChatID, run.waitingID, text)
		if err == nil {
			return nil
		}
		slog.Warn("failed to edit status message, sending a new one",
			"message_id", run.waitingID,
			"error", err,
		)
	}

	if _, err := s.messenger.SendText(ctx, run.task.ChatID, 0, text); err != nil {
		return fmt.Errorf("report relay failure: %w", errors.Join(cause, err))
	}
	return nil
}

// errorDetail prefers the extraction API's own explanation.
func errorDetail(err error) string {
	var apiErr *extractor.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func musicButton(musicURL string) *model.ReplyMarkup {
	if musicURL == "" {
		return nil
	}
	return &model.ReplyMarkup{InlineKeyboard: [][]model.InlineButton{{
		{Text: musicButtonText, URL: musicURL},
	}}}
}

func newPayload(kind model.MediaKind, sent *model.SentMedia, base string, markup *model.ReplyMarkup) (model.Payload, error) {
	if kind == model.KindVideo {
		if len(sent.FileIDs) == 0 {
			return model.Payload{}, model.ErrMissingFileID
		}
		return model.NewVideo(sent.FileIDs[0], base, markup)
	}
	return model.NewPhotoAlbum(sent.FileIDs, base, markup)
}
