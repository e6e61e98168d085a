package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify"
)

const (
	subjectTaskCreated   = "task.created"
	subjectTaskCompleted = "task.completed"
)

// NotifierConfig is the configuration for the NATS notifier.
type NotifierConfig struct {
	Conn   *nats.Conn
	Logger log.Logger
}

func (c *NotifierConfig) defaults() error {
	if c.Conn == nil {
		return fmt.Errorf("nats connection is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.NATS"})
	return nil
}

// Notifier publishes task events on NATS subjects.
type Notifier struct {
	conn   *nats.Conn
	logger log.Logger
}

// NewNotifier creates a new NATS notifier.
func NewNotifier(cfg NotifierConfig) (*Notifier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Notifier{conn: cfg.Conn, logger: cfg.Logger}, nil
}

// TaskCreated publishes a task creation event.
func (n *Notifier) TaskCreated(ctx context.Context, t model.Task) error {
	return n.publish(subjectTaskCreated, t)
}

// TaskCompleted publishes a task completion event.
func (n *Notifier) TaskCompleted(ctx context.Context, t model.Task) error {
	return n.publish(subjectTaskCompleted, t)
}

func (n *Notifier) publish(subject string, t model.Task) error {
	data, err := json.Marshal(notify.NewTaskEvent(t))
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("could not publish on %s: %w", subject, err)
	}

	n.logger.Debugf("Published %s event for task %s", subject, t.ID)
	return nil
}
