package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/harborcrm/harbor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadService_CreateLead_Defaults(t *testing.T) {
	store := &MockLeadStore{
		CreateFunc: func(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
			lead.ID = "lead_1"
			return lead, nil
		},
	}

	svc := NewLeadService(store, slog.Default())
	lead, err := svc.CreateLead(context.Background(), &models.Lead{Name: "  Jane Prospect  ", Email: "Jane@Example.com"})

	require.NoError(t, err)
	assert.Equal(t, "Jane Prospect", lead.Name)
	assert.Equal(t, "jane@example.com", lead.Email)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, models.LeadSourceOther, lead.Source)
}

func TestLeadService_CreateLead_InvalidStatus(t *testing.T) {
	svc := NewLeadService(&MockLeadStore{}, slog.Default())

	_, err := svc.CreateLead(context.Background(), &models.Lead{Name: "Jane", Status: "stalled"})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestLeadService_ListLeads_InvalidFilter(t *testing.T) {
	svc := NewLeadService(&MockLeadStore{}, slog.Default())

	_, err := svc.ListLeads(context.Background(), "stalled", "", 10, 0)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestLeadService_ConvertLead_Success(t *testing.T) {
	store := &MockLeadStore{
		ConvertFunc: func(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
			return &models.Customer{ID: "customer_1", Name: "Jane Prospect", OwnerID: ownerID}, nil
		},
	}

	svc := NewLeadService(store, slog.Default())
	customer, err := svc.ConvertLead(context.Background(), "lead_1", "user_1")

	require.NoError(t, err)
	assert.Equal(t, "customer_1", customer.ID)
	assert.Equal(t, "user_1", customer.OwnerID)
}

func TestLeadService_ConvertLead_AlreadyConverted(t *testing.T) {
	store := &MockLeadStore{
		ConvertFunc: func(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
			return nil, models.ErrConflict
		},
	}

	svc := NewLeadService(store, slog.Default())
	_, err := svc.ConvertLead(context.Background(), "lead_1", "user_1")

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCustomerService_CreateCustomer_OwnerStamped(t *testing.T) {
	store := &MockCustomerStore{
		CreateFunc: func(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
			customer.ID = "customer_1"
			return customer, nil
		},
	}

	svc := NewCustomerService(store, slog.Default())
	customer, err := svc.CreateCustomer(context.Background(), &models.Customer{Name: "Acme Corp"}, "user_1")

	require.NoError(t, err)
	assert.Equal(t, "user_1", customer.OwnerID)
	assert.Equal(t, models.CustomerStatusActive, customer.Status)
}

func TestCustomerService_UpdateCustomer_InvalidStatus(t *testing.T) {
	svc := NewCustomerService(&MockCustomerStore{}, slog.Default())

	_, err := svc.UpdateCustomer(context.Background(), "customer_1", &models.Customer{Name: "Acme", Status: "dormant"})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestDashboardService_GetStats(t *testing.T) {
	store := &MockDashboardStore{
		TotalsFunc: func(ctx context.Context) (int, int, int, int, error) {
			return 12, 30, 4, 9, nil
		},
		LeadsGroupedByFunc: func(ctx context.Context, column string) ([]models.StatusCount, error) {
			return []models.StatusCount{{Key: "new", Count: 10}}, nil
		},
		WinRateFunc: func(ctx context.Context) (float64, error) {
			return 0.25, nil
		},
	}

	svc := NewDashboardService(store, slog.Default())
	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalCustomers)
	assert.Equal(t, 30, stats.TotalLeads)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 9, stats.ActiveCustomers)
	assert.Equal(t, 0.25, stats.WinRate)
	assert.Len(t, stats.LeadsByStatus, 1)
}
