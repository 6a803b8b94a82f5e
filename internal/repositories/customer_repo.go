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

type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, email, phone, company, status, owner_id, created_at, updated_at`

func scanCustomerRow(scanner rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Status, &c.OwnerID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func scanCustomerRows(rows pgx.Rows) ([]*models.Customer, error) {
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return customers, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.ID = uuid.New().String()

	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if customer.Status == "" {
		customer.Status = models.CustomerStatusActive
	}

	query := `
		INSERT INTO customers (id, name, email, phone, company, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9)
		RETURNING ` + customerColumns

	return scanCustomerRow(r.db.Pool.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Company,
		customer.Status, customer.OwnerID, customer.CreatedAt, customer.UpdatedAt,
	))
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomerRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns a page of customers, optionally filtered by status.
func (r *CustomerRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Customer, error) {
	var rows pgx.Rows
	var err error

	if status != "" {
		query := `SELECT ` + customerColumns + ` FROM customers WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = r.db.Pool.Query(ctx, query, status, limit, offset)
	} else {
		query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = r.db.Pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	return scanCustomerRows(rows)
}

func (r *CustomerRepository) Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	query := `
		UPDATE customers SET name = $1, email = lower($2), phone = $3, company = $4, status = $5, updated_at = now()
		WHERE id = $6
		RETURNING ` + customerColumns

	return scanCustomerRow(r.db.Pool.QueryRow(ctx, query,
		customer.Name, customer.Email, customer.Phone, customer.Company, customer.Status, id,
	))
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
