package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/models"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, recipientID, text string) error {
	args := m.Called(ctx, recipientID, text)
	return args.Error(0)
}

func TestNotifySubmission(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, "42", "<b>New submission</b>\nName: Alice\nMessage: Hello").
		Return(nil).Once()

	svc := NewNotificationService(sender, "42", zap.NewNop())
	err := svc.NotifySubmission(context.Background(), models.Submission{Name: "Alice", Message: "Hello"})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotifySubmissionPropagatesFailure(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, "42", mock.Anything).Return(errors.New("upstream down")).Once()

	svc := NewNotificationService(sender, "42", zap.NewNop())
	err := svc.NotifySubmission(context.Background(), models.Submission{Name: "A", Message: "B"})
	require.EqualError(t, err, "upstream down")
	sender.AssertExpectations(t)
}

func TestSendTest(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, "42", TestMessage).Return(nil).Once()

	svc := NewNotificationService(sender, "42", zap.NewNop())
	require.NoError(t, svc.SendTest(context.Background()))
	sender.AssertExpectations(t)
}
