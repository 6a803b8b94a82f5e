package repositories

import (
	"context"
	"fmt"

	"github.com/harborcrm/harbor/internal/database"
	"github.com/harborcrm/harbor/internal/models"
)

// DashboardRepository runs the aggregation queries behind the dashboard
// endpoint. It is read-only.
type DashboardRepository struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Totals returns the customer, lead, user, and active-customer counts.
func (r *DashboardRepository) Totals(ctx context.Context) (customers, leads, users, activeCustomers int, err error) {
	err = r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM customers WHERE status = 'active')
	`).Scan(&customers, &leads, &users, &activeCustomers)
	if err != nil {
		err = fmt.Errorf("failed to query totals: %w", err)
	}
	return
}

// LeadsGroupedBy buckets leads by the given column, which must be "status"
// or "source"; anything else is rejected before touching SQL.
func (r *DashboardRepository) LeadsGroupedBy(ctx context.Context, column string) ([]models.StatusCount, error) {
	if column != "status" && column != "source" {
		return nil, fmt.Errorf("unsupported grouping column: %s", column)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+column+`, COUNT(*) FROM leads GROUP BY `+column+` ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to group leads by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make([]models.StatusCount, 0)
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Key, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		counts = append(counts, sc)
	}

	return counts, rows.Err()
}

// WinRate returns won / (won + lost), or 0 when no leads have closed.
func (r *DashboardRepository) WinRate(ctx context.Context) (float64, error) {
	var won, lost int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost')
		FROM leads
	`).Scan(&won, &lost)
	if err != nil {
		return 0, fmt.Errorf("failed to query win rate: %w", err)
	}

	if won+lost == 0 {
		return 0, nil
	}
	return float64(won) / float64(won+lost), nil
}

// RecentLeads returns the most recently created leads.
func (r *DashboardRepository) RecentLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent leads: %w", err)
	}

	return scanLeadRows(rows)
}

// LeadsByMonth counts new leads per calendar month over the trailing window.
func (r *DashboardRepository) LeadsByMonth(ctx context.Context, months int) ([]models.MonthlyCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM leads
		WHERE created_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY 1
		ORDER BY 1
	`, months-1)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly leads: %w", err)
	}
	defer rows.Close()

	counts := make([]models.MonthlyCount, 0)
	for rows.Next() {
		var mc models.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan month row: %w", err)
		}
		counts = append(counts, mc)
	}

	return counts, rows.Err()
}
