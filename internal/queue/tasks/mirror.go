package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/notify"
	appErr "github.com/formrelay/relay/pkg/errors"
)

// TypeMirrorDeliver is the asynq task type carrying one mirrored log line.
const TypeMirrorDeliver = "mirror:deliver"

// MirrorPayload is the task payload for mirror deliveries.
type MirrorPayload struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

// NewMirrorTask builds a mirror:deliver task. Lines are low value, so
// retries are few and stale tasks expire.
func NewMirrorTask(recipientID, text string) (*asynq.Task, error) {
	b, err := json.Marshal(MirrorPayload{RecipientID: recipientID, Text: text})
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal mirror payload")
	}
	return asynq.NewTask(TypeMirrorDeliver, b,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	), nil
}

// MirrorTaskHandler delivers mirror:deliver tasks through a Sender.
type MirrorTaskHandler struct {
	sender notify.Sender
	log    *zap.Logger
}

// NewMirrorTaskHandler returns a handler. log must not itself be mirrored.
func NewMirrorTaskHandler(sender notify.Sender, log *zap.Logger) *MirrorTaskHandler {
	return &MirrorTaskHandler{sender: sender, log: log}
}

func (h *MirrorTaskHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var p MirrorPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.log.Error("invalid mirror task payload", zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if p.RecipientID == "" || p.Text == "" {
		h.log.Error("incomplete mirror task payload", zap.Bool("has_recipient", p.RecipientID != ""))
		return fmt.Errorf("%w: missing recipient or text", asynq.SkipRetry)
	}

	if err := h.sender.Send(ctx, p.RecipientID, p.Text); err != nil {
		h.log.Warn("mirror delivery failed", zap.String("recipient", p.RecipientID), zap.Error(err))
		return err
	}
	h.log.Debug("mirror line delivered", zap.String("recipient", p.RecipientID))
	return nil
}
