package models

import "time"

// Customer statuses
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer is a CRM account record owned by a user.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Status    string    `json:"status"` // "active", "inactive"
	OwnerID   string    `json:"owner_id"` // user that owns the relationship
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidCustomerStatus reports whether status is a known customer status.
func ValidCustomerStatus(status string) bool {
	return status == CustomerStatusActive || status == CustomerStatusInactive
}
