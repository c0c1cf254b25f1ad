package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/service"
)

// Registrar creates identities with their role profile.
type Registrar interface {
	RegisterShelter(ctx context.Context, in service.ShelterRegistration) (*model.User, error)
	RegisterAdmin(ctx context.Context, in service.AdminRegistration) (*model.User, error)
}

// RegistrationHandler handles account registration.
type RegistrationHandler struct {
	svc    Registrar
	logger *slog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc Registrar, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, logger: logger}
}

// RegisterShelter handles POST /api/v1/shelters
func (h *RegistrationHandler) RegisterShelter(w http.ResponseWriter, r *http.Request) {
	var in service.ShelterRegistration
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.svc.RegisterShelter(r.Context(), in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RegisterAdmin handles POST /api/v1/admins
func (h *RegistrationHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var in service.AdminRegistration
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.svc.RegisterAdmin(r.Context(), in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
