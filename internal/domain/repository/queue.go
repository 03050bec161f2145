package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// LinkTask is a detected link waiting to be relayed.
type LinkTask struct {
	ID         uuid.UUID    `json:"id"`
	ChatID     int64        `json:"chat_id"`
	MessageID  int          `json:"message_id"`
	URL        string       `json:"url"`
	Sender     model.Sender `json:"sender"`
	Comment    string       `json:"comment,omitempty"`
	ReceivedAt time.Time    `json:"received_at"`
	RetryCount int          `json:"retry_count"`
}

// LinkQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type LinkQueue interface {
	// PublishLinkTask sends a link task to the queue.
	// Used by the bot process after detecting a link.
	PublishLinkTask(ctx context.Context, task LinkTask) error

	// ConsumeLinkTasks starts consuming link tasks from the queue.
	// The handler function is called for each received task.
	// Used by the worker, which is the only writer of the cache.
	ConsumeLinkTasks(ctx context.Context, handler func(task LinkTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
