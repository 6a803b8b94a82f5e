package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/harborcrm/harbor/internal/models"
)

// CustomerStore is the persistence surface for customer records.
type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error)
	Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerService handles customer CRUD.
type CustomerService struct {
	store  CustomerStore
	logger *slog.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(store CustomerStore, logger *slog.Logger) *CustomerService {
	return &CustomerService{store: store, logger: logger}
}

// CreateCustomer creates a customer owned by the calling user.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer, ownerID string) (*models.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	if customer.Name == "" {
		return nil, models.ErrBadRequest
	}
	if customer.Status == "" {
		customer.Status = models.CustomerStatusActive
	}
	if !models.ValidCustomerStatus(customer.Status) {
		return nil, models.ErrBadRequest
	}
	customer.OwnerID = ownerID

	created, err := s.store.Create(ctx, customer)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create customer", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("customer created",
		slog.String("customer_id", created.ID),
		slog.String("owner_id", ownerID))

	return created, nil
}

// GetCustomer returns a customer by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get customer", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return customer, nil
}

// ListCustomers returns a page of customers, optionally filtered by status.
func (s *CustomerService) ListCustomers(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error) {
	if status != "" && !models.ValidCustomerStatus(status) {
		return nil, models.ErrBadRequest
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	customers, err := s.store.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list customers", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return customers, nil
}

// UpdateCustomer replaces the mutable fields of a customer.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	if customer.Name == "" {
		return nil, models.ErrBadRequest
	}
	if !models.ValidCustomerStatus(customer.Status) {
		return nil, models.ErrBadRequest
	}

	updated, err := s.store.Update(ctx, id, customer)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update customer", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("customer updated", slog.String("customer_id", id))
	return updated, nil
}

// DeleteCustomer removes a customer record.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete customer", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("customer deleted", slog.String("customer_id", id))
	return nil
}
