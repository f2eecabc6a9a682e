package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/models"
	"github.com/formrelay/relay/internal/notify"
)

// TestMessage is sent by the /test endpoint.
const TestMessage = "<b>Test message</b> from formrelay"

// NotificationService forwards notifications to the single configured recipient.
type NotificationService interface {
	NotifySubmission(ctx context.Context, s models.Submission) error
	SendTest(ctx context.Context) error
}

type notificationService struct {
	sender    notify.Sender
	recipient string
	log       *zap.Logger
}

func NewNotificationService(sender notify.Sender, recipientID string, log *zap.Logger) NotificationService {
	return &notificationService{sender: sender, recipient: recipientID, log: log}
}

var _ NotificationService = (*notificationService)(nil)

// NotifySubmission formats the submission and delivers it synchronously.
func (s *notificationService) NotifySubmission(ctx context.Context, sub models.Submission) error {
	text := sub.Notification()
	s.log.Info("sending notification", zap.String("recipient", s.recipient), zap.Int("length", len(text)))
	if err := s.sender.Send(ctx, s.recipient, text); err != nil {
		s.log.Error("notification failed", zap.String("recipient", s.recipient), zap.Error(err))
		return err
	}
	s.log.Info("notification sent", zap.String("recipient", s.recipient))
	return nil
}

func (s *notificationService) SendTest(ctx context.Context) error {
	if err := s.sender.Send(ctx, s.recipient, TestMessage); err != nil {
		s.log.Error("test notification failed", zap.Error(err))
		return err
	}
	s.log.Info("test notification sent", zap.String("recipient", s.recipient))
	return nil
}
