package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/api/types"
	"github.com/formrelay/relay/internal/models"
	appErr "github.com/formrelay/relay/pkg/errors"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifySubmission(ctx context.Context, s models.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockNotifier) SendTest(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func postSubmit(h *SubmitHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Submit(rr, req)
	return rr
}

func decodeStatus(t *testing.T, rr *httptest.ResponseRecorder) types.StatusResponse {
	t.Helper()
	var resp types.StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestSubmitDeliversNotification(t *testing.T) {
	svc := &mockNotifier{}
	svc.On("NotifySubmission", mock.Anything, models.Submission{Name: "Alice", Message: "Hello"}).Return(nil).Once()

	rr := postSubmit(NewSubmitHandler(svc, 1<<10, zap.NewNop()), `{"name":"Alice","message":"Hello"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, types.StatusResponse{Status: types.StatusSuccess}, decodeStatus(t, rr))
	svc.AssertExpectations(t)
}

func TestSubmitDefaultsMissingFields(t *testing.T) {
	svc := &mockNotifier{}
	svc.On("NotifySubmission", mock.Anything, models.Submission{
		Name:    "Bob",
		Message: models.DefaultFieldValue,
	}).Return(nil).Once()

	rr := postSubmit(NewSubmitHandler(svc, 1<<10, zap.NewNop()), `{"name":"Bob"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":  "not json",
		"truncated": `{"name":"Al`,
		"array":     `["Alice"]`,
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &mockNotifier{}
			rr := postSubmit(NewSubmitHandler(svc, 1<<10, zap.NewNop()), body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, types.StatusResponse{Status: types.StatusError, Message: "Invalid JSON"}, decodeStatus(t, rr))
			svc.AssertNotCalled(t, "NotifySubmission", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitRejectsOversizedBody(t *testing.T) {
	svc := &mockNotifier{}
	body := `{"name":"` + strings.Repeat("a", 64) + `"}`

	rr := postSubmit(NewSubmitHandler(svc, 16, zap.NewNop()), body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, types.StatusError, decodeStatus(t, rr).Status)
	svc.AssertNotCalled(t, "NotifySubmission", mock.Anything, mock.Anything)
}

func TestSubmitReportsDeliveryFailure(t *testing.T) {
	svc := &mockNotifier{}
	svc.On("NotifySubmission", mock.Anything, mock.Anything).
		Return(appErr.New(appErr.CodeUnavailable, "telegram rejected message")).Once()

	rr := postSubmit(NewSubmitHandler(svc, 1<<10, zap.NewNop()), `{"name":"Alice","message":"Hello"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeStatus(t, rr)
	assert.Equal(t, types.StatusError, resp.Status)
	assert.Equal(t, "telegram rejected message", resp.Message)
}

func TestSubmitReportsUntypedFailureAs500(t *testing.T) {
	svc := &mockNotifier{}
	svc.On("NotifySubmission", mock.Anything, mock.Anything).Return(context.DeadlineExceeded).Once()

	rr := postSubmit(NewSubmitHandler(svc, 1<<10, zap.NewNop()), `{"name":"Alice"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, types.StatusResponse{Status: types.StatusError, Message: "context deadline exceeded"}, decodeStatus(t, rr))
}

func TestPreflight(t *testing.T) {
	rr := httptest.NewRecorder()
	NewSubmitHandler(&mockNotifier{}, 1<<10, zap.NewNop()).
		Preflight(rr, httptest.NewRequest(http.MethodOptions, "/submit", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}
