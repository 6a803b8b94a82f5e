package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborcrm/harbor/internal/database"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/jackc/pgx/v5"
)

type LeadRepository struct {
	db *database.DB
}

func NewLeadRepository(db *database.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, name, email, phone, source, status, assigned_to, customer_id, notes, created_at, updated_at`

func scanLeadRow(scanner rowScanner) (*models.Lead, error) {
	var l models.Lead
	err := scanner.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status,
		&l.AssignedTo, &l.CustomerID, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &l, nil
}

func scanLeadRows(rows pgx.Rows) ([]*models.Lead, error) {
	defer rows.Close()

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		lead, err := scanLeadRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return leads, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	lead.ID = uuid.New().String()

	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceOther
	}

	query := `
		INSERT INTO leads (id, name, email, phone, source, status, assigned_to, notes, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + leadColumns

	return scanLeadRow(r.db.Pool.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source, lead.Status,
		lead.AssignedTo, lead.Notes, lead.CreatedAt, lead.UpdatedAt,
	))
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLeadRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns a page of leads, optionally filtered by status and/or source.
func (r *LeadRepository) List(ctx context.Context, status, source string, limit, offset int) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if source != "" {
		args = append(args, source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}

	return scanLeadRows(rows)
}

func (r *LeadRepository) Update(ctx context.Context, id string, lead *models.Lead) (*models.Lead, error) {
	query := `
		UPDATE leads SET name = $1, email = lower($2), phone = $3, source = $4, status = $5,
			assigned_to = $6, notes = $7, updated_at = now()
		WHERE id = $8
		RETURNING ` + leadColumns

	return scanLeadRow(r.db.Pool.QueryRow(ctx, query,
		lead.Name, lead.Email, lead.Phone, lead.Source, lead.Status,
		lead.AssignedTo, lead.Notes, id,
	))
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Convert creates a customer from a won lead and links the two, all inside
// one transaction so a half-converted lead can never be observed.
func (r *LeadRepository) Convert(ctx context.Context, leadID, ownerID string) (*models.Customer, error) {
	var customer *models.Customer

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		lead, err := scanLeadRow(tx.QueryRow(ctx,
			`SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, leadID))
		if err != nil {
			return err
		}

		if lead.CustomerID != nil {
			return models.ErrConflict
		}

		customerID := uuid.New().String()
		customer, err = scanCustomerRow(tx.QueryRow(ctx, `
			INSERT INTO customers (id, name, email, phone, company, status, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, '', $5, $6, now(), now())
			RETURNING `+customerColumns,
			customerID, lead.Name, lead.Email, lead.Phone, models.CustomerStatusActive, ownerID,
		))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE leads SET status = $1, customer_id = $2, updated_at = now() WHERE id = $3
		`, models.LeadStatusWon, customerID, leadID)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return customer, nil
}
