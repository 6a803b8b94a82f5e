package integration

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		os.Exit(0)
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		panic("failed to set up test database: " + err.Error())
	}
	testDB = db

	code := m.Run()

	testDB.Teardown(ctx)
	os.Exit(code)
}

func setupServer(t *testing.T) *TestServer {
	t.Helper()

	require.NoError(t, testDB.CleanupTables(context.Background()))

	ts := NewTestServer(testDB.DB)
	t.Cleanup(ts.Close)
	return ts
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	ts := setupServer(t)
	email, password := TestUser("flow")

	// Register
	resp, err := ts.Request(http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     "Flow Tester",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	last := ts.EmailService.GetLastEmail()
	require.NotNil(t, last)
	assert.Equal(t, email, last.To)
	code := ExtractCodeFromEmail(last.Body)
	require.Len(t, code, 6)

	// Login before verification is rejected
	resp, err = ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Verify with the emailed code
	resp, err = ts.Request(http.MethodPost, "/auth/verify-email", map[string]string{
		"email": email,
		"code":  code,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accessToken, body, err := ExtractTokenFromResponse(resp)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	assert.NotNil(t, ExtractRefreshCookie(resp))

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, user["email_verified"])

	// Login now succeeds
	resp, err = ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accessToken, _, err = ExtractTokenFromResponse(resp)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)

	// Authenticated profile fetch
	resp, err = ts.RequestWithAuth(http.MethodGet, "/users/me", accessToken, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginWrongPasswordLockout(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestUser("lockout")
	userRepo, _, _, _ := InitializeRepositories(testDB.DB)
	_, err := SeedUser(ctx, userRepo, email, password, true)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		resp, err := ts.Request(http.MethodPost, "/auth/login", map[string]string{
			"email":    email,
			"password": "WrongPassword1!",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	// Correct password is rejected while locked
	resp, err := ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshRotation(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestUser("refresh")
	userRepo, _, _, _ := InitializeRepositories(testDB.DB)
	_, err := SeedUser(ctx, userRepo, email, password, true)
	require.NoError(t, err)

	resp, err := ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := ExtractRefreshCookie(resp)
	require.NotNil(t, cookie)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accessToken, _, err := ExtractTokenFromResponse(resp)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	rotated := ExtractRefreshCookie(resp)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestUser("reset")
	userRepo, _, _, _ := InitializeRepositories(testDB.DB)
	_, err := SeedUser(ctx, userRepo, email, password, true)
	require.NoError(t, err)

	resp, err := ts.Request(http.MethodPost, "/auth/forgot-password", map[string]string{
		"email": email,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	last := ts.EmailService.GetLastEmail()
	require.NotNil(t, last)
	token := ExtractResetTokenFromEmail(last.Body)
	require.NotEmpty(t, token)

	newPassword := "BrandNewPassword456!"
	resp, err = ts.Request(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": newPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Old password no longer works
	resp, err = ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// New password works
	resp, err = ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": newPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
