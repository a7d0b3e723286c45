package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"studentportal/internal/queue"
)

// Kind is the severity shown to the user.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// MessageType tags notification messages on the queue.
const MessageType = "notification"

// Notification is one user-facing message.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier delivers notifications fire-and-forget; failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, message string)
}

// Log writes notifications to the structured log.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, kind Kind, message string) {
	level := slog.LevelInfo
	if kind == Error {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification", "kind", kind, "message", message)
}

// Queued publishes notifications to a queue for cmd/worker or an in-process
// Dispatch loop to deliver.
type Queued struct {
	q      queue.Queue
	logger *slog.Logger
}

// NewQueued creates a queue-backed notifier.
func NewQueued(q queue.Queue, logger *slog.Logger) *Queued {
	return &Queued{q: q, logger: logger}
}

func (n *Queued) Notify(ctx context.Context, kind Kind, message string) {
	body, err := json.Marshal(Notification{Kind: kind, Message: message, At: time.Now().UTC()})
	if err != nil {
		n.logger.Error("encode notification failed", "error", err)
		return
	}
	if err := n.q.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		n.logger.Warn("queue publish failed", "error", err, "kind", kind)
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Kind, string) {}

// Dispatch consumes notification messages from q and hands them to sink
// until ctx is done.
func Dispatch(ctx context.Context, q queue.Queue, sink Notifier, logger *slog.Logger) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range messages {
		if msg.Type != MessageType {
			continue
		}
		var n Notification
		if err := json.Unmarshal(msg.Body, &n); err != nil {
			logger.Warn("dropping malformed notification", "error", err)
			continue
		}
		sink.Notify(ctx, n.Kind, n.Message)
	}
	return nil
}
