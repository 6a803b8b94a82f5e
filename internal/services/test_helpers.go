package services

import (
	"context"
	"time"

	"github.com/harborcrm/harbor/internal/models"
	pkgauth "github.com/harborcrm/harbor/pkg/auth"
)

// MockUserStore implements CredentialStore, OTPStore, LoginGuardStore and
// UserStore for testing
type MockUserStore struct {
	CreateFunc                 func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc                func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc             func(ctx context.Context, email string) (*models.User, error)
	ListFunc                   func(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateFunc                 func(ctx context.Context, id string, user *models.User) (*models.User, error)
	DeleteFunc                 func(ctx context.Context, id string) error
	SetOTPFunc                 func(ctx context.Context, userID, otpHash string, expiresAt time.Time) error
	IncrementOTPAttemptsFunc   func(ctx context.Context, userID string) (int, error)
	ClearOTPFunc               func(ctx context.Context, userID string) error
	MarkVerifiedFunc           func(ctx context.Context, id string) error
	IncrementLoginFailuresFunc func(ctx context.Context, userID string, threshold int, lockWindow time.Duration) (int, *time.Time, error)
	RecordLoginSuccessFunc     func(ctx context.Context, userID string) error
	RecordLogoutFunc           func(ctx context.Context, id string) error
	SetPasswordResetFunc       func(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHashFunc    func(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePasswordFunc         func(ctx context.Context, id, passwordHash string) error
	GetProfileFunc             func(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfileFunc          func(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserStore) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserStore) SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	if m.SetOTPFunc != nil {
		return m.SetOTPFunc(ctx, userID, otpHash, expiresAt)
	}
	return nil
}

func (m *MockUserStore) IncrementOTPAttempts(ctx context.Context, userID string) (int, error) {
	if m.IncrementOTPAttemptsFunc != nil {
		return m.IncrementOTPAttemptsFunc(ctx, userID)
	}
	return 1, nil
}

func (m *MockUserStore) ClearOTP(ctx context.Context, userID string) error {
	if m.ClearOTPFunc != nil {
		return m.ClearOTPFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserStore) MarkVerified(ctx context.Context, id string) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id)
	}
	return nil
}

func (m *MockUserStore) IncrementLoginFailures(ctx context.Context, userID string, threshold int, lockWindow time.Duration) (int, *time.Time, error) {
	if m.IncrementLoginFailuresFunc != nil {
		return m.IncrementLoginFailuresFunc(ctx, userID, threshold, lockWindow)
	}
	return 1, nil, nil
}

func (m *MockUserStore) RecordLoginSuccess(ctx context.Context, userID string) error {
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserStore) RecordLogout(ctx context.Context, id string) error {
	if m.RecordLogoutFunc != nil {
		return m.RecordLogoutFunc(ctx, id)
	}
	return nil
}

func (m *MockUserStore) SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	if m.SetPasswordResetFunc != nil {
		return m.SetPasswordResetFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockUserStore) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	if m.GetByResetTokenHashFunc != nil {
		return m.GetByResetTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, profile)
	}
	return profile, nil
}

// MockEmailService implements EmailService for testing. Sent messages are
// recorded so tests can fish codes and tokens out of the bodies.
type MockEmailService struct {
	SendFunc func(ctx context.Context, recipient, subject, body string) error
	Sent     []SentEmail
}

// SentEmail is one captured outbound message.
type SentEmail struct {
	Recipient string
	Subject   string
	Body      string
}

func (m *MockEmailService) Send(ctx context.Context, recipient, subject, body string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, recipient, subject, body); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentEmail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// MockCustomerStore implements CustomerStore for testing
type MockCustomerStore struct {
	CreateFunc  func(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Customer, error)
	ListFunc    func(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error)
	UpdateFunc  func(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockCustomerStore) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	customer.ID = "customer_123"
	return customer, nil
}

func (m *MockCustomerStore) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCustomerStore) List(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.Customer{}, nil
}

func (m *MockCustomerStore) Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, customer)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCustomerStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockLeadStore implements LeadStore for testing
type MockLeadStore struct {
	CreateFunc  func(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Lead, error)
	ListFunc    func(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error)
	UpdateFunc  func(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error)
	DeleteFunc  func(ctx context.Context, id string) error
	ConvertFunc func(ctx context.Context, leadID, ownerID string) (*models.Customer, error)
}

func (m *MockLeadStore) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lead)
	}
	lead.ID = "lead_123"
	return lead, nil
}

func (m *MockLeadStore) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockLeadStore) List(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, source, limit, offset)
	}
	return []*models.Lead{}, nil
}

func (m *MockLeadStore) Update(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, lead)
	}
	return nil, models.ErrInternalServer
}

func (m *MockLeadStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockLeadStore) Convert(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, leadID, ownerID)
	}
	return nil, models.ErrNotFound
}

// MockDashboardStore implements DashboardStore for testing
type MockDashboardStore struct {
	TotalsFunc         func(ctx context.Context) (int, int, int, int, error)
	LeadsGroupedByFunc func(ctx context.Context, column string) ([]models.StatusCount, error)
	WinRateFunc        func(ctx context.Context) (float64, error)
	RecentLeadsFunc    func(ctx context.Context, limit int) ([]*models.Lead, error)
	LeadsByMonthFunc   func(ctx context.Context, months int) ([]models.MonthlyCount, error)
}

func (m *MockDashboardStore) Totals(ctx context.Context) (int, int, int, int, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	return 0, 0, 0, 0, nil
}

func (m *MockDashboardStore) LeadsGroupedBy(ctx context.Context, column string) ([]models.StatusCount, error) {
	if m.LeadsGroupedByFunc != nil {
		return m.LeadsGroupedByFunc(ctx, column)
	}
	return []models.StatusCount{}, nil
}

func (m *MockDashboardStore) WinRate(ctx context.Context) (float64, error) {
	if m.WinRateFunc != nil {
		return m.WinRateFunc(ctx)
	}
	return 0, nil
}

func (m *MockDashboardStore) RecentLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	if m.RecentLeadsFunc != nil {
		return m.RecentLeadsFunc(ctx, limit)
	}
	return []*models.Lead{}, nil
}

func (m *MockDashboardStore) LeadsByMonth(ctx context.Context, months int) ([]models.MonthlyCount, error) {
	if m.LeadsByMonthFunc != nil {
		return m.LeadsByMonthFunc(ctx, months)
	}
	return []models.MonthlyCount{}, nil
}

// NewTestUser constructs a verified user for tests
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Email:         email,
		Name:          name,
		Role:          models.RoleUser,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTestUserWithPassword creates a verified user with a real bcrypt hash
func NewTestUserWithPassword(id, email, name, password string) *models.User {
	user := NewTestUser(id, email, name)
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user.PasswordHash = hash
	return user
}

// NewTestUserUnverified creates a user whose email is not yet verified
func NewTestUserUnverified(id, email, name string) *models.User {
	user := NewTestUser(id, email, name)
	user.EmailVerified = false
	return user
}

// NewTestUserLocked creates a user locked for the next 30 minutes
func NewTestUserLocked(id, email, name string) *models.User {
	user := NewTestUser(id, email, name)
	lockedUntil := time.Now().Add(30 * time.Minute)
	user.LockedUntil = &lockedUntil
	user.LoginFailureCount = 5
	return user
}

// NewTestUserWithOTP creates an unverified user holding a pending code
func NewTestUserWithOTP(id, email, name, code string, expiresAt time.Time) *models.User {
	user := NewTestUserUnverified(id, email, name)
	hash := hashOTPCode(code)
	user.OTPHash = &hash
	user.OTPExpiresAt = &expiresAt
	return user
}
