package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/service"
)

// AdoptionIntake accepts adoption requests.
type AdoptionIntake interface {
	SubmitRequest(ctx context.Context, in service.AdoptionInput) (*model.AdoptionRequest, error)
}

// AdoptionHandler handles adoption request submission.
type AdoptionHandler struct {
	svc    AdoptionIntake
	logger *slog.Logger
}

// NewAdoptionHandler creates a new AdoptionHandler.
func NewAdoptionHandler(svc AdoptionIntake, logger *slog.Logger) *AdoptionHandler {
	return &AdoptionHandler{svc: svc, logger: logger}
}

// AdoptionAccepted is the response of an accepted adoption request.
type AdoptionAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Submit handles POST /api/v1/adoption-requests
//
// The request is queued for delivery to the shelter, so success is 202.
func (h *AdoptionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.AdoptionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req, err := h.svc.SubmitRequest(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, AdoptionAccepted{ID: req.ID, Status: "queued"})
}
