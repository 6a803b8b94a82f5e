package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/harborcrm/harbor/internal/handlers"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLead_Success(t *testing.T) {
	mockLeads := &handlers.MockLeadService{
		CreateLeadFunc: func(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
			lead.ID = "lead_1"
			return lead, nil
		},
	}

	handler := handlers.NewLeadHandler(mockLeads)
	req := handlers.NewTestRequest(t, "POST", "/leads", handlers.LeadRequest{
		Name:   "Jane Prospect",
		Email:  "jane@example.com",
		Source: "referral",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusCreated)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "lead_1", data["id"])
	assert.Equal(t, "referral", data["source"])
}

func TestCreateLead_InvalidSource(t *testing.T) {
	handler := handlers.NewLeadHandler(&handlers.MockLeadService{})
	req := handlers.NewTestRequest(t, "POST", "/leads", handlers.LeadRequest{
		Name:   "Jane Prospect",
		Source: "carrier-pigeon",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusBadRequest)
}

func TestGetLead_NotFound(t *testing.T) {
	handler := handlers.NewLeadHandler(&handlers.MockLeadService{})

	r := chi.NewRouter()
	r.Get("/leads/{id}", handler.Get)

	req := handlers.NewTestRequest(t, "GET", "/leads/ghost", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusNotFound)
}

func TestConvertLead_Success(t *testing.T) {
	mockLeads := &handlers.MockLeadService{
		ConvertLeadFunc: func(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
			assert.Equal(t, "lead_1", leadID)
			assert.Equal(t, "user_1", ownerID)
			return &models.Customer{ID: "customer_1", Name: "Jane Prospect", OwnerID: ownerID}, nil
		},
	}

	handler := handlers.NewLeadHandler(mockLeads)

	r := chi.NewRouter()
	r.Post("/leads/{id}/convert", handler.Convert)

	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/leads/lead_1/convert", nil), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusCreated)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "customer_1", data["id"])
}

func TestConvertLead_AlreadyConverted(t *testing.T) {
	mockLeads := &handlers.MockLeadService{
		ConvertLeadFunc: func(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewLeadHandler(mockLeads)

	r := chi.NewRouter()
	r.Post("/leads/{id}/convert", handler.Convert)

	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/leads/lead_1/convert", nil), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusConflict)
}

func TestCreateCustomer_Success(t *testing.T) {
	handler := handlers.NewCustomerHandler(&handlers.MockCustomerService{})
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/customers", handlers.CustomerRequest{
		Name:  "Acme Corp",
		Email: "contact@acme.example",
	}), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	handler.Create(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusCreated)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user_1", data["owner_id"], "creator becomes the owner")
}

func TestCreateCustomer_Unauthenticated(t *testing.T) {
	handler := handlers.NewCustomerHandler(&handlers.MockCustomerService{})
	req := handlers.NewTestRequest(t, "POST", "/customers", handlers.CustomerRequest{Name: "Acme Corp"})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusUnauthorized)
}

func TestListCustomers_StatusFilterPassedThrough(t *testing.T) {
	var gotStatus string
	mockCustomers := &handlers.MockCustomerService{
		ListCustomersFunc: func(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error) {
			gotStatus = status
			return []*models.Customer{}, nil
		},
	}

	handler := handlers.NewCustomerHandler(mockCustomers)
	req := handlers.NewTestRequest(t, "GET", "/customers?status=inactive", nil)

	w := httptest.NewRecorder()
	handler.List(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusOK)
	assert.Equal(t, "inactive", gotStatus)
}

func TestDashboardStats(t *testing.T) {
	mockDashboard := &handlers.MockDashboardService{
		GetStatsFunc: func(ctx context.Context) (*models.DashboardStats, error) {
			return &models.DashboardStats{TotalCustomers: 7, WinRate: 0.5}, nil
		},
	}

	handler := handlers.NewDashboardHandler(mockDashboard)
	req := handlers.NewTestRequest(t, "GET", "/dashboard/stats", nil)

	w := httptest.NewRecorder()
	handler.Stats(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusOK)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["total_customers"])
	assert.Equal(t, 0.5, data["win_rate"])
}
