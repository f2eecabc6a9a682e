// Package mirror copies high-severity log entries to a chat through the
// notification sender. It is disabled unless MIRROR_ENABLED is set.
package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/notify"
	"github.com/formrelay/relay/internal/queue/tasks"
)

// ErrQueueFull is returned by Buffered.Publish when the line was dropped.
var ErrQueueFull = errors.New("mirror queue full")

// ErrClosed is returned by Buffered.Publish after Close.
var ErrClosed = errors.New("mirror sink closed")

// Sink receives rendered log lines.
type Sink interface {
	Publish(ctx context.Context, line string) error
}

// DirectSink sends every line straight to the recipient.
type DirectSink struct {
	sender    notify.Sender
	recipient string
}

func NewDirectSink(sender notify.Sender, recipientID string) *DirectSink {
	return &DirectSink{sender: sender, recipient: recipientID}
}

func (s *DirectSink) Publish(ctx context.Context, line string) error {
	return s.sender.Send(ctx, s.recipient, line)
}

// Enqueuer is the subset of *asynq.Client used by QueueSink.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink hands lines to the worker as mirror:deliver tasks.
type QueueSink struct {
	client    Enqueuer
	recipient string
}

func NewQueueSink(client Enqueuer, recipientID string) *QueueSink {
	return &QueueSink{client: client, recipient: recipientID}
}

func (s *QueueSink) Publish(ctx context.Context, line string) error {
	task, err := tasks.NewMirrorTask(s.recipient, line)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task)
	return err
}

// Buffered decouples logging from delivery: Publish never blocks, and a single
// goroutine drains the queue into the wrapped sink.
type Buffered struct {
	next    Sink
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan string
	done   chan struct{}
}

// NewBuffered starts the drain goroutine. log must not be mirrored, or a
// failing delivery would feed itself.
func NewBuffered(next Sink, size int, timeout time.Duration, log *zap.Logger) *Buffered {
	if size < 1 {
		size = 1
	}
	b := &Buffered{
		next:    next,
		timeout: timeout,
		log:     log,
		queue:   make(chan string, size),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Buffered) Publish(_ context.Context, line string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.queue <- line:
		return nil
	default:
		return ErrQueueFull
	}
}

func (b *Buffered) run() {
	defer close(b.done)
	for line := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		if err := b.next.Publish(ctx, line); err != nil {
			b.log.Warn("mirror delivery failed", zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting lines and waits for the queue to drain or ctx to end.
func (b *Buffered) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
