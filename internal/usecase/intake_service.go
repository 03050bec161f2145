package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/metrics"
)

// IntakeService turns chat messages into queued link tasks.
type IntakeService interface {
	// HandleMessage queues the first supported link found in msg.
	// It reports whether a link was found.
	HandleMessage(ctx context.Context, msg model.InboundMessage) (bool, error)
}

type intakeService struct {
	queue repository.LinkQueue
	now   func() time.Time
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(queue repository.LinkQueue) IntakeService {
	return &intakeService{
		queue: queue,
		now:   time.Now,
	}
}

func (s *intakeService) HandleMessage(ctx context.Context, msg model.InboundMessage) (bool, error) {
	link, comment, ok := model.DetectLink(msg.Text)
	if !ok {
		return false, nil
	}

	task := repository.LinkTask{
		ID:         uuid.New(),
		ChatID:     msg.ChatID,
		MessageID:  msg.MessageID,
		URL:        link,
		Sender:     msg.Sender,
		Comment:    comment,
		ReceivedAt: s.now().UTC(),
	}

	if err := s.queue.PublishLinkTask(ctx, task); err != nil {
		return true, fmt.Errorf("publish link task: %w", err)
	}

	metrics.LinksDetectedTotal.Inc()
	slog.Info("link queued",
		"task_id", task.ID,
		"chat_id", task.ChatID,
		"url", task.URL,
	)

	return true, nil
}
