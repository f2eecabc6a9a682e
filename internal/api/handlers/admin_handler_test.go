package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdminTest(t *testing.T) {
	t.Run("Sent", func(t *testing.T) {
		svc := &mockNotifier{}
		svc.On("SendTest", mock.Anything).Return(nil).Once()

		rr := httptest.NewRecorder()
		NewAdminHandler(svc, "", zap.NewNop()).Test(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Test message sent", rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("FailureStill200", func(t *testing.T) {
		svc := &mockNotifier{}
		svc.On("SendTest", mock.Anything).Return(errors.New("chat not found")).Once()

		rr := httptest.NewRecorder()
		NewAdminHandler(svc, "", zap.NewNop()).Test(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Error: chat not found", rr.Body.String())
	})
}

func TestAdminLogs(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relay.log")
		require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

		rr := httptest.NewRecorder()
		NewAdminHandler(&mockNotifier{}, path, zap.NewNop()).Logs(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, "line one\nline two\n", rr.Body.String())
	})

	t.Run("Missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.log")

		rr := httptest.NewRecorder()
		NewAdminHandler(&mockNotifier{}, path, zap.NewNop()).Logs(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Log file not found", rr.Body.String())
	})

	t.Run("FileLoggingDisabled", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewAdminHandler(&mockNotifier{}, "", zap.NewNop()).Logs(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))

		assert.Equal(t, "Log file not found", rr.Body.String())
	})
}
