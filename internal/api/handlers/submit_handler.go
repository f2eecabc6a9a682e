package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/formrelay/relay/internal/api/middleware"
	"github.com/formrelay/relay/internal/api/types"
	"github.com/formrelay/relay/internal/models"
	"github.com/formrelay/relay/internal/services"
	appErr "github.com/formrelay/relay/pkg/errors"
)

const invalidJSONMessage = "Invalid JSON"

// SubmitHandler relays form submissions to the notification service.
type SubmitHandler struct {
	svc          services.NotificationService
	maxBodyBytes int64
	log          *zap.Logger
}

func NewSubmitHandler(svc services.NotificationService, maxBodyBytes int64, log *zap.Logger) *SubmitHandler {
	return &SubmitHandler{svc: svc, maxBodyBytes: maxBodyBytes, log: log}
}

// Submit godoc
// @Summary      Submit a form
// @Description  Forwards name and message to the configured recipient. Both fields are optional.
// @Tags         submit
// @Accept       json
// @Produce      json
// @Param        submission  body      models.Submission  true  "Form fields"
// @Success      200         {object}  types.StatusResponse
// @Failure      400         {object}  types.StatusResponse
// @Failure      413         {object}  types.StatusResponse
// @Failure      500         {object}  types.StatusResponse
// @Router       /submit [post]
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("id", middleware.GetRequestID(r.Context())))
	log.Info("submission received", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	log.Debug("request headers", zap.Any("headers", r.Header))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("submission body too large", zap.Int64("limit", tooLarge.Limit))
			writeJSON(w, http.StatusRequestEntityTooLarge,
				types.StatusResponse{Status: types.StatusError, Message: "Request body too large"})
			return
		}
		log.Warn("reading submission body failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, types.StatusResponse{Status: types.StatusError, Message: invalidJSONMessage})
		return
	}

	sub, err := models.ParseSubmission(body)
	if err != nil {
		log.Warn("invalid submission body", zap.Error(err), zap.Int("bytes", len(body)))
		writeJSON(w, appErr.HTTPStatus(err), types.StatusResponse{Status: types.StatusError, Message: invalidJSONMessage})
		return
	}
	log.Debug("submission parsed", zap.String("name", sub.Name), zap.String("message", sub.Message))

	if err := h.svc.NotifySubmission(r.Context(), sub); err != nil {
		log.Error("submission not delivered", zap.Error(err))
		writeJSON(w, appErr.HTTPStatus(err), types.ErrorStatus(err))
		return
	}

	log.Info("submission delivered")
	writeJSON(w, http.StatusOK, types.StatusResponse{Status: types.StatusSuccess})
}

// Preflight godoc
// @Summary      CORS preflight
// @Tags         submit
// @Success      200
// @Router       /submit [options]
func (h *SubmitHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
