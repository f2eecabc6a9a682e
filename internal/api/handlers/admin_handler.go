package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/services"
	appErr "github.com/formrelay/relay/pkg/errors"
)

// AdminHandler serves the debugging endpoints /test and /logs.
type AdminHandler struct {
	svc     services.NotificationService
	logFile string
	log     *zap.Logger
}

func NewAdminHandler(svc services.NotificationService, logFile string, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logFile: logFile, log: log}
}

// Test godoc
// @Summary      Send a test notification
// @Description  Always answers 200; delivery errors are embedded in the text.
// @Tags         admin
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string  "Test message sent"
// @Router       /test [get]
func (h *AdminHandler) Test(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendTest(r.Context()); err != nil {
		writeText(w, http.StatusOK, "Error: "+appErr.ReasonOf(err))
		return
	}
	writeText(w, http.StatusOK, "Test message sent")
}

// Logs godoc
// @Summary      Read the server log file
// @Tags         admin
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string  "raw log lines"
// @Router       /logs [get]
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if h.logFile == "" {
		writeText(w, http.StatusOK, "Log file not found")
		return
	}
	f, err := os.Open(h.logFile)
	if errors.Is(err, fs.ErrNotExist) {
		writeText(w, http.StatusOK, "Log file not found")
		return
	}
	if err != nil {
		h.log.Error("open log file failed", zap.String("path", h.logFile), zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error reading log file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		h.log.Warn("streaming log file interrupted", zap.Error(err))
	}
}
