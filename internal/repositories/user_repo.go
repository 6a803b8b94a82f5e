package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborcrm/harbor/internal/database"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository is the credential store. All counter mutations are single
// UPDATE ... RETURNING statements so concurrent requests against the same
// record never lose updates.
type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, email_verified,
	otp_hash, otp_expires_at, otp_attempt_count,
	login_failure_count, locked_until,
	password_reset_token_hash, password_reset_expires_at,
	last_login_at, last_logout_at, password_changed_at, created_at, updated_at`

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.EmailVerified,
		&user.OTPHash, &user.OTPExpiresAt, &user.OTPAttemptCount,
		&user.LoginFailureCount, &user.LockedUntil,
		&user.PasswordResetTokenHash, &user.PasswordResetExpiresAt,
		&user.LastLoginAt, &user.LastLogoutAt, &user.PasswordChangedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Create inserts a new unverified credential record. A unique violation on
// the email index surfaces as ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, role, email_verified, password_changed_at, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.EmailVerified, user.PasswordChangedAt, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrDuplicateEmail
		}
		return nil, err
	}

	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up a record by its login key, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// Update changes the mutable identity fields. Security state has dedicated
// methods below and is never written through here.
func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, role = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, user.Name, user.Role, id))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetOTP stores a fresh code hash and expiry and resets the attempt counter.
// Re-issuing before expiry overwrites the previous code: only one code is
// outstanding per record.
func (r *UserRepository) SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET otp_hash = $1, otp_expires_at = $2, otp_attempt_count = 0, updated_at = now()
		WHERE id = $3
	`, otpHash, expiresAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// IncrementOTPAttempts applies an atomic increment-and-fetch on the attempt
// counter and returns the new value.
func (r *UserRepository) IncrementOTPAttempts(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users SET otp_attempt_count = otp_attempt_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING otp_attempt_count
	`, id).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// MarkVerified flips the verified flag and clears the OTP fields. The flag
// is monotonic: the statement only ever sets it to TRUE, so repeat calls are
// idempotent.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET email_verified = TRUE,
			otp_hash = NULL, otp_expires_at = NULL, otp_attempt_count = 0,
			updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearOTP closes the outstanding verification cycle without touching the
// verified flag.
func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET otp_hash = NULL, otp_expires_at = NULL, otp_attempt_count = 0, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// IncrementLoginFailures bumps the failure counter, capping it at threshold,
// and sets the lock when the cap is reached. One statement, so two
// simultaneous failures cannot both observe a stale count.
func (r *UserRepository) IncrementLoginFailures(ctx context.Context, id string, threshold int, lockWindow time.Duration) (int, *time.Time, error) {
	var count int
	var lockedUntil *time.Time
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users SET
			login_failure_count = LEAST(login_failure_count + 1, $2),
			locked_until = CASE
				WHEN login_failure_count + 1 >= $2 AND (locked_until IS NULL OR locked_until < now())
					THEN now() + $3
				ELSE locked_until
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING login_failure_count, locked_until
	`, id, threshold, lockWindow).Scan(&count, &lockedUntil)
	if err != nil {
		return 0, nil, database.MapPostgresError(err)
	}
	return count, lockedUntil, nil
}

// RecordLoginSuccess resets the failure state and stamps last_login_at.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET login_failure_count = 0, locked_until = NULL,
			last_login_at = now(), updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordLogout stamps last_logout_at. Issued access tokens stay valid until
// natural expiry.
func (r *UserRepository) RecordLogout(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET last_logout_at = now(), updated_at = now() WHERE id = $1
	`, id)
	return database.MapPostgresError(err)
}

// SetPasswordReset stores the reset token hash and its expiry.
func (r *UserRepository) SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET password_reset_token_hash = $1, password_reset_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, tokenHash, expiresAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByResetTokenHash finds the record holding an outstanding reset token.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE password_reset_token_hash = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, tokenHash))
}

// UpdatePassword replaces the hash and closes any outstanding reset cycle.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1,
			password_reset_token_hash = NULL, password_reset_expires_at = NULL,
			password_changed_at = now(), updated_at = now()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearExpiredSecurityState drops expired OTP codes, reset tokens, and
// released locks in bulk. Request paths check expiry lazily; this keeps
// the table tidy.
func (r *UserRepository) ClearExpiredSecurityState(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET
			otp_hash = CASE WHEN otp_expires_at < now() THEN NULL ELSE otp_hash END,
			otp_expires_at = CASE WHEN otp_expires_at < now() THEN NULL ELSE otp_expires_at END,
			password_reset_token_hash = CASE WHEN password_reset_expires_at < now() THEN NULL ELSE password_reset_token_hash END,
			password_reset_expires_at = CASE WHEN password_reset_expires_at < now() THEN NULL ELSE password_reset_expires_at END,
			login_failure_count = CASE WHEN locked_until < now() THEN 0 ELSE login_failure_count END,
			locked_until = CASE WHEN locked_until < now() THEN NULL ELSE locked_until END,
			updated_at = now()
		WHERE otp_expires_at < now()
			OR password_reset_expires_at < now()
			OR locked_until < now()
	`)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// GetProfile returns the owned profile sub-record, or ErrNotFound when the
// user has never saved one.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, phone, company, timezone, avatar_url, updated_at
		FROM user_profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Phone, &p.Company, &p.Timezone, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces the profile sub-record.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, phone, company, timezone, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			phone = EXCLUDED.phone, company = EXCLUDED.company,
			timezone = EXCLUDED.timezone, avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING user_id, phone, company, timezone, avatar_url, updated_at
	`, profile.UserID, profile.Phone, profile.Company, profile.Timezone, profile.AvatarURL).
		Scan(&p.UserID, &p.Phone, &p.Company, &p.Timezone, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}
