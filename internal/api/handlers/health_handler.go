package handlers

import (
	"net/http"

	"github.com/formrelay/relay/internal/api/types"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// Root godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "Server is running"
// @Router       / [get]
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Server is running")
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]string{"status": "ready"}})
}
