package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/config"
	"github.com/harborcrm/harbor/internal/database"
	"github.com/harborcrm/harbor/internal/handlers"
	middlewareCustom "github.com/harborcrm/harbor/internal/middleware"
	"github.com/harborcrm/harbor/internal/routes"
	"github.com/harborcrm/harbor/internal/services"
	pkglogger "github.com/harborcrm/harbor/pkg/logger"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// Send records the email
func (m *MockEmailService) Send(ctx context.Context, recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:      recipient,
		Subject: subject,
		Body:    body,
	})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with the database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Config       *config.Config

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and mocked email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret-32-characters-long-for-testing",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
			OTPExpiry:          15 * time.Minute,
			OTPMaxAttempts:     5,
			LockThreshold:      5,
			LockWindow:         30 * time.Minute,
			ResetTokenExpiry:   1 * time.Hour,
			CleanupInterval:    1 * time.Hour,
		},
		Email: config.EmailConfig{
			Provider:    "smtp",
			FromAddress: "noreply@test.local",
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
		},
	}

	userRepo, customerRepo, leadRepo, dashboardRepo := InitializeRepositories(db)

	mockEmail := &MockEmailService{}

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	otpService := services.NewOTPService(userRepo, logger, cfg.Auth.OTPExpiry, cfg.Auth.OTPMaxAttempts)
	loginGuard := services.NewLoginGuard(userRepo, logger, cfg.Auth.LockThreshold, cfg.Auth.LockWindow)

	authService := services.NewAuthService(
		userRepo,
		otpService,
		loginGuard,
		tokenManager,
		mockEmail,
		logger,
		auditLogger,
		cfg.Auth.ResetTokenExpiry,
	)
	userService := services.NewUserService(userRepo, logger)
	customerService := services.NewCustomerService(customerRepo, logger)
	leadService := services.NewLeadService(leadRepo, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, logger)

	cookieConfig := auth.CookieConfig{Domain: "", Secure: false}
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, cfg.Auth.RefreshTokenExpiry)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	leadHandler := handlers.NewLeadHandler(leadService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, userHandler, customerHandler, leadHandler, dashboardHandler, tokenManager, userRepo)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		Config:       cfg,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with an access token
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses a JSON response body into target
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokenFromResponse extracts the access token and response body from an auth response
func ExtractTokenFromResponse(resp *http.Response) (accessToken string, body map[string]interface{}, err error) {
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", nil, err
	}

	if token, ok := body["token"].(string); ok {
		accessToken = token
	}
	return accessToken, body, nil
}

// ExtractRefreshCookie returns the refresh token cookie from a response, or nil
func ExtractRefreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

// GetErrorMessage extracts the error message from an error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
