// Package notify delivers text notifications to the messaging API.
package notify

import "context"

// Sender performs a single outbound delivery of text to a recipient.
// A nil error means the messaging API accepted the message.
type Sender interface {
	Send(ctx context.Context, recipientID, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, recipientID, text string) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, recipientID, text string) error {
	return f(ctx, recipientID, text)
}
