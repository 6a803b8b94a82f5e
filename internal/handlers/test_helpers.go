package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/harborcrm/harbor/internal/services"
	pkghttp "github.com/harborcrm/harbor/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestRequest creates an HTTP request with a JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to the request context, standing in for
// the auth middleware
func WithAuthContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Type:   models.TokenTypeAccess,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// DecodeEnvelope decodes the response envelope and checks the status code
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) pkghttp.Envelope {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "response status mismatch")

	var env pkghttp.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, email, password, name string) (*services.UserResponse, error)
	VerifyEmailFunc          func(ctx context.Context, email, code string) (*services.AuthResponse, error)
	LoginFunc                func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	RefreshFunc              func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	LogoutFunc               func(ctx context.Context, userID string) error
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, token, newPassword string) error
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*services.UserResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, email, code string) (*services.AuthResponse, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, email, code)
	}
	return nil, models.ErrInvalidCode
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, models.ErrInvalidToken
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetUserFunc        func(ctx context.Context, id string) (*services.UserResponse, error)
	ListUsersFunc      func(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
	UpdateUserFunc     func(ctx context.Context, id, name, role string) (*services.UserResponse, error)
	DeleteUserFunc     func(ctx context.Context, id, callerID string) error
	ChangePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
	GetProfileFunc     func(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfileFunc  func(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*services.UserResponse, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*services.UserResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return []*services.UserResponse{}, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id, name, role string) (*services.UserResponse, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, name, role)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) DeleteUser(ctx context.Context, id, callerID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id, callerID)
	}
	return nil
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &models.UserProfile{UserID: userID}, nil
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, profile)
	}
	return profile, nil
}

// MockCustomerService implements CustomerServiceInterface for testing
type MockCustomerService struct {
	CreateCustomerFunc func(ctx context.Context, customer *models.Customer, ownerID string) (*models.Customer, error)
	GetCustomerFunc    func(ctx context.Context, id string) (*models.Customer, error)
	ListCustomersFunc  func(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error)
	UpdateCustomerFunc func(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	DeleteCustomerFunc func(ctx context.Context, id string) error
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, customer *models.Customer, ownerID string) (*models.Customer, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, customer, ownerID)
	}
	customer.ID = "customer_123"
	customer.OwnerID = ownerID
	return customer, nil
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error) {
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx, status, limit, offset)
	}
	return []*models.Customer{}, nil
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	if m.UpdateCustomerFunc != nil {
		return m.UpdateCustomerFunc(ctx, id, customer)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if m.DeleteCustomerFunc != nil {
		return m.DeleteCustomerFunc(ctx, id)
	}
	return nil
}

// MockLeadService implements LeadServiceInterface for testing
type MockLeadService struct {
	CreateLeadFunc  func(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetLeadFunc     func(ctx context.Context, id string) (*models.Lead, error)
	ListLeadsFunc   func(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error)
	UpdateLeadFunc  func(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error)
	DeleteLeadFunc  func(ctx context.Context, id string) error
	ConvertLeadFunc func(ctx context.Context, leadID, ownerID string) (*models.Customer, error)
}

func (m *MockLeadService) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if m.CreateLeadFunc != nil {
		return m.CreateLeadFunc(ctx, lead)
	}
	lead.ID = "lead_123"
	return lead, nil
}

func (m *MockLeadService) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	if m.GetLeadFunc != nil {
		return m.GetLeadFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockLeadService) ListLeads(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	if m.ListLeadsFunc != nil {
		return m.ListLeadsFunc(ctx, status, source, limit, offset)
	}
	return []*models.Lead{}, nil
}

func (m *MockLeadService) UpdateLead(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error) {
	if m.UpdateLeadFunc != nil {
		return m.UpdateLeadFunc(ctx, id, lead)
	}
	return nil, models.ErrInternalServer
}

func (m *MockLeadService) DeleteLead(ctx context.Context, id string) error {
	if m.DeleteLeadFunc != nil {
		return m.DeleteLeadFunc(ctx, id)
	}
	return nil
}

func (m *MockLeadService) ConvertLead(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
	if m.ConvertLeadFunc != nil {
		return m.ConvertLeadFunc(ctx, leadID, ownerID)
	}
	return nil, models.ErrNotFound
}

// MockDashboardService implements DashboardServiceInterface for testing
type MockDashboardService struct {
	GetStatsFunc func(ctx context.Context) (*models.DashboardStats, error)
}

func (m *MockDashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return &models.DashboardStats{}, nil
}
