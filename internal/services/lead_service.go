package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/harborcrm/harbor/internal/models"
)

// LeadStore is the persistence surface for lead records.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	List(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error)
	Update(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	Convert(ctx context.Context, leadID, ownerID string) (*models.Customer, error)
}

// LeadService handles lead CRUD and conversion into customers.
type LeadService struct {
	store  LeadStore
	logger *slog.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(store LeadStore, logger *slog.Logger) *LeadService {
	return &LeadService{store: store, logger: logger}
}

// CreateLead creates a lead. New leads start in status "new" unless the
// caller says otherwise.
func (s *LeadService) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	if lead.Name == "" {
		return nil, models.ErrBadRequest
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceOther
	}
	if !models.ValidLeadStatus(lead.Status) || !models.ValidLeadSource(lead.Source) {
		return nil, models.ErrBadRequest
	}

	created, err := s.store.Create(ctx, lead)
	if err != nil {
		s.logger.Error("failed to create lead", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("lead created",
		slog.String("lead_id", created.ID),
		slog.String("source", created.Source))

	return created, nil
}

// GetLead returns a lead by ID.
func (s *LeadService) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get lead", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return lead, nil
}

// ListLeads returns a page of leads, optionally filtered by status and
// source.
func (s *LeadService) ListLeads(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	if status != "" && !models.ValidLeadStatus(status) {
		return nil, models.ErrBadRequest
	}
	if source != "" && !models.ValidLeadSource(source) {
		return nil, models.ErrBadRequest
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	leads, err := s.store.List(ctx, status, source, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leads", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return leads, nil
}

// UpdateLead replaces the mutable fields of a lead.
func (s *LeadService) UpdateLead(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	if lead.Name == "" {
		return nil, models.ErrBadRequest
	}
	if !models.ValidLeadStatus(lead.Status) || !models.ValidLeadSource(lead.Source) {
		return nil, models.ErrBadRequest
	}

	updated, err := s.store.Update(ctx, id, lead)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update lead", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("lead updated", slog.String("lead_id", id))
	return updated, nil
}

// DeleteLead removes a lead record.
func (s *LeadService) DeleteLead(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete lead", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("lead deleted", slog.String("lead_id", id))
	return nil
}

// ConvertLead turns a lead into a customer owned by the caller. Converting
// a lead twice fails with ErrConflict.
func (s *LeadService) ConvertLead(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
	customer, err := s.store.Convert(ctx, leadID, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to convert lead", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("lead converted",
		slog.String("lead_id", leadID),
		slog.String("customer_id", customer.ID))

	return customer, nil
}
