// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrNoActiveSenders is returned when an organization has no connected
// sender accounts to distribute a campaign over.
type ErrNoActiveSenders struct {
	OrganizationID int
}

func (e *ErrNoActiveSenders) Error() string {
	return fmt.Sprintf("organization %d has no active senders", e.OrganizationID)
}

func NewNoActiveSenders(orgID int) error {
	return &ErrNoActiveSenders{OrganizationID: orgID}
}
