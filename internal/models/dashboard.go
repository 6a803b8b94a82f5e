package models

// StatusCount is one bucket of a GROUP BY aggregation.
type StatusCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthlyCount is the number of new leads created in a calendar month.
type MonthlyCount struct {
	Month string `json:"month"` // "2026-03"
	Count int    `json:"count"`
}

// DashboardStats is the aggregate snapshot served by the dashboard endpoint.
type DashboardStats struct {
	TotalCustomers  int            `json:"total_customers"`
	TotalLeads      int            `json:"total_leads"`
	TotalUsers      int            `json:"total_users"`
	LeadsByStatus   []StatusCount  `json:"leads_by_status"`
	LeadsBySource   []StatusCount  `json:"leads_by_source"`
	WinRate         float64        `json:"win_rate"` // won / (won + lost), 0 when no closed leads
	RecentLeads     []*Lead        `json:"recent_leads"`
	LeadsByMonth    []MonthlyCount `json:"leads_by_month"`
	ActiveCustomers int            `json:"active_customers"`
}
