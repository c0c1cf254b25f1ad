package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/service"
	"github.com/pawhome/pawhome/internal/validate"
)

// PetCatalog lists, reads and publishes pets.
type PetCatalog interface {
	List(ctx context.Context, q service.PetQuery, self *url.URL) (*model.Page[*model.Pet], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Pet, error)
	Create(ctx context.Context, shelterID uuid.UUID, in service.PetInput) (*model.Pet, error)
	Types(ctx context.Context) ([]model.PetType, error)
	Sexes(ctx context.Context) ([]model.PetSex, error)
}

// PetHandler handles pet endpoints.
type PetHandler struct {
	svc    PetCatalog
	logger *slog.Logger
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(svc PetCatalog, logger *slog.Logger) *PetHandler {
	return &PetHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/pets
//
// Query parameters: page, pet_type and pet_sex (repeatable or comma
// separated), shelter (shelter uuid).
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parsePetQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	page, err := h.svc.List(r.Context(), q, requestURL(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/pets/{petID}
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "petID"))
	if err != nil {
		writeError(w, r, h.logger, service.ErrPetNotFound)
		return
	}
	pet, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// Create handles POST /api/v1/pets
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	shelter := auth.MustPrincipalFromContext(r.Context()).User
	pet, err := h.svc.Create(r.Context(), shelter.ID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

// Types handles GET /api/v1/pet-types
func (h *PetHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Types(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// Sexes handles GET /api/v1/pet-sexes
func (h *PetHandler) Sexes(w http.ResponseWriter, r *http.Request) {
	sexes, err := h.svc.Sexes(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sexes)
}

func parsePetQuery(values url.Values) (service.PetQuery, error) {
	var q service.PetQuery

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, service.ErrInvalidPage
		}
		q.Page = page
	}

	q.Filter.Types = splitValues(values["pet_type"])
	q.Filter.Sexes = splitValues(values["pet_sex"])

	if raw := values.Get("shelter"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs := validate.Errors{}
			errs.AddCode("shelter", validate.CodeInvalid, "El id del refugio")
			return q, errs
		}
		q.Filter.ShelterID = &id
	}
	return q, nil
}

// splitValues flattens repeated and comma separated query values, dropping
// blanks.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// requestURL rebuilds the absolute URL of r for pagination links.
func requestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
