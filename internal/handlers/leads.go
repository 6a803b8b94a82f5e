package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/models"
	pkghttp "github.com/harborcrm/harbor/pkg/http"
)

// LeadServiceInterface defines the interface for lead business logic
type LeadServiceInterface interface {
	CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	ListLeads(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error)
	UpdateLead(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error)
	DeleteLead(ctx context.Context, id string) error
	ConvertLead(ctx context.Context, leadID, ownerID string) (*models.Customer, error)
}

// LeadHandler handles lead HTTP requests
type LeadHandler struct {
	service LeadServiceInterface
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(service LeadServiceInterface) *LeadHandler {
	return &LeadHandler{service: service}
}

// LeadRequest represents the request body for create and update
type LeadRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone" validate:"max=30"`
	Source     string  `json:"source" validate:"omitempty,oneof=web referral campaign cold other"`
	Status     string  `json:"status" validate:"omitempty,oneof=new contacted qualified won lost"`
	AssignedTo *string `json:"assigned_to"`
	Notes      string  `json:"notes" validate:"max=5000"`
}

// Create creates a lead.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	lead, err := h.service.CreateLead(r.Context(), &models.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     req.Source,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid lead details")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, lead)
}

// List returns a page of leads, optionally filtered by status and source.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	status := r.URL.Query().Get("status")
	source := r.URL.Query().Get("source")

	leads, err := h.service.ListLeads(r.Context(), status, source, limit, offset)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid status or source filter")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, leads)
}

// Get returns one lead by ID.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Lead not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lead)
}

// Update replaces the mutable fields of a lead.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.LeadStatusNew
	}
	if req.Source == "" {
		req.Source = models.LeadSourceOther
	}

	lead, err := h.service.UpdateLead(r.Context(), id, &models.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     req.Source,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Lead not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid lead details")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lead)
}

// Delete removes a lead.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteLead(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Lead not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Convert turns a lead into a customer owned by the calling user.
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	id := chi.URLParam(r, "id")

	customer, err := h.service.ConvertLead(r.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Lead not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Lead has already been converted")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, customer)
}
