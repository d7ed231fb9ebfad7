package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int64
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int64) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrAccountNotFound is returned when a campaign references an account
// that no longer exists.
type ErrAccountNotFound struct {
	AccountID int64
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account with ID %d not found", e.AccountID)
}

func NewAccountNotFound(id int64) error {
	return &ErrAccountNotFound{AccountID: id}
}

// ErrLeadNotFound is returned when a campaign lead references a lead row
// that no longer exists.
type ErrLeadNotFound struct {
	LeadID int64
}

func (e *ErrLeadNotFound) Error() string {
	return fmt.Sprintf("lead with ID %d not found", e.LeadID)
}

func NewLeadNotFound(id int64) error {
	return &ErrLeadNotFound{LeadID: id}
}
