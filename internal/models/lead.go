package models

import "time"

// Lead statuses form the pipeline: new -> contacted -> qualified -> won/lost.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// Lead sources
const (
	LeadSourceWeb      = "web"
	LeadSourceReferral = "referral"
	LeadSourceCampaign = "campaign"
	LeadSourceCold     = "cold"
	LeadSourceOther    = "other"
)

// Lead is a prospective customer tracked through the sales pipeline.
// CustomerID is set once the lead is converted.
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	AssignedTo *string   `json:"assigned_to"` // user id, nullable until triaged
	CustomerID *string   `json:"customer_id"` // set on conversion
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidLeadStatus reports whether status is a known lead status.
func ValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// ValidLeadSource reports whether source is a known lead source.
func ValidLeadSource(source string) bool {
	switch source {
	case LeadSourceWeb, LeadSourceReferral, LeadSourceCampaign, LeadSourceCold, LeadSourceOther:
		return true
	}
	return false
}
