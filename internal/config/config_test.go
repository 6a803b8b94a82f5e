package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"AccessTokenExpiry", cfg.Auth.AccessTokenExpiry, 15 * time.Minute},
		{"RefreshTokenExpiry", cfg.Auth.RefreshTokenExpiry, 7 * 24 * time.Hour},
		{"OTPExpiry", cfg.Auth.OTPExpiry, 15 * time.Minute},
		{"LockWindow", cfg.Auth.LockWindow, 30 * time.Minute},
		{"ResetTokenExpiry", cfg.Auth.ResetTokenExpiry, 10 * time.Minute},
		{"CleanupInterval", cfg.Auth.CleanupInterval, 1 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Auth.OTPMaxAttempts != 5 {
		t.Errorf("OTPMaxAttempts: got %d, want 5", cfg.Auth.OTPMaxAttempts)
	}
	if cfg.Auth.LockThreshold != 5 {
		t.Errorf("LockThreshold: got %d, want 5", cfg.Auth.LockThreshold)
	}
	if cfg.Email.Provider != "smtp" {
		t.Errorf("Email.Provider: got %q, want smtp", cfg.Email.Provider)
	}
	if cfg.Auth.CookieSecure {
		t.Error("CookieSecure should be false outside production")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv()
	os.Setenv("OTP_EXPIRY", "5m")
	os.Setenv("OTP_MAX_ATTEMPTS", "3")
	os.Setenv("LOGIN_LOCK_WINDOW", "1h")
	os.Setenv("EMAIL_PROVIDER", "ses")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.OTPExpiry != 5*time.Minute {
		t.Errorf("OTPExpiry: got %v, want 5m", cfg.Auth.OTPExpiry)
	}
	if cfg.Auth.OTPMaxAttempts != 3 {
		t.Errorf("OTPMaxAttempts: got %d, want 3", cfg.Auth.OTPMaxAttempts)
	}
	if cfg.Auth.LockWindow != time.Hour {
		t.Errorf("LockWindow: got %v, want 1h", cfg.Auth.LockWindow)
	}
	if cfg.Email.Provider != "ses" {
		t.Errorf("Email.Provider: got %q, want ses", cfg.Email.Provider)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without JWT_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without DB_PASSWORD")
	}
}

func TestLoad_InvalidEmailProvider(t *testing.T) {
	setRequiredEnv()
	os.Setenv("EMAIL_PROVIDER", "carrier-pigeon")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject unknown email providers")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"short secret in development", "only15characters", "development", false},
		{"too short in development", "short", "development", true},
		{"short secret in production", "only15characters", "production", true},
		{"long secret in production", "this-secret-is-32-characters-long!!", "production", false},
		{"weak value", "changeme", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJWTSecret(tt.secret, tt.env)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateJWTSecret(%q, %q) = %v, wantErr %v", tt.secret, tt.env, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequiredEnv()
	os.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if len(cfg.Server.TrustedProxies) != 2 {
		t.Fatalf("TrustedProxies: got %d entries, want 2", len(cfg.Server.TrustedProxies))
	}
	if cfg.Server.TrustedProxies[1] != "172.16.0.0/12" {
		t.Errorf("TrustedProxies[1]: got %q, want trimmed CIDR", cfg.Server.TrustedProxies[1])
	}
}
