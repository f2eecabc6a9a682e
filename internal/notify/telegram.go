package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	appErr "github.com/formrelay/relay/pkg/errors"
)

const (
	// ParseModeHTML lets the text carry <b>, <i> and friends.
	ParseModeHTML = "HTML"

	maxReasonBytes = 1 << 10
)

var tracer = otel.Tracer("github.com/formrelay/relay/internal/notify")

// Ensure TelegramSender implements Sender interface.
var _ Sender = (*TelegramSender)(nil)

// TelegramOptions configures a TelegramSender.
type TelegramOptions struct {
	APIURL     string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// TelegramSender posts messages through the Telegram Bot API sendMessage method.
type TelegramSender struct {
	client   *retryablehttp.Client
	endpoint string
	token    string
	log      *zap.Logger
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func NewTelegramSender(opts TelegramOptions) *TelegramSender {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.MaxRetries
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = opts.Timeout
	// keep the upstream response so its body can be reported as the failure reason
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{s: log.Sugar(), token: opts.Token}

	return &TelegramSender{
		client:   client,
		endpoint: strings.TrimRight(opts.APIURL, "/") + "/bot" + opts.Token + "/sendMessage",
		token:    opts.Token,
		log:      log,
	}
}

// Send delivers text to recipientID. Any non-2xx status or transport error is
// returned as a CodeUnavailable AppError whose reason carries the response body
// or the transport error.
func (s *TelegramSender) Send(ctx context.Context, recipientID, text string) error {
	ctx, span := tracer.Start(ctx, "TelegramSender.Send", trace.WithAttributes(
		attribute.String("recipient", recipientID),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	payload, err := json.Marshal(sendMessageRequest{ChatID: recipientID, Text: text, ParseMode: ParseModeHTML})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode payload")
		return appErr.Wrap(err, appErr.CodeInternal, "encode message")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return appErr.Wrap(s.redact(err), appErr.CodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		err = s.redact(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reach messaging api")
		if errors.Is(err, context.DeadlineExceeded) {
			return appErr.Wrap(err, appErr.CodeDeadline, "messaging api timed out")
		}
		return appErr.Wrap(err, appErr.CodeUnavailable, "messaging api unreachable")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxReasonBytes))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		err := fmt.Errorf("status %d: %s", resp.StatusCode, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, "messaging api rejected message")
		return appErr.Wrap(err, appErr.CodeUnavailable, "messaging api rejected message").
			WithMeta("status", resp.StatusCode)
	}

	s.log.Debug("message delivered",
		zap.String("recipient", recipientID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	span.SetStatus(codes.Ok, "delivered")
	return nil
}

// redact strips the request URL (which embeds the bot token) from transport errors.
func (s *TelegramSender) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	if s.token == "" || !strings.Contains(err.Error(), s.token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), s.token, "<redacted>"))
}
