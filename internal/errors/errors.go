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

func NewCampaignNotFound(id int) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

// ErrCampaignMisconfigured marks a campaign that cannot be processed in the
// current run (missing organization, missing schedule fields). The sweep
// skips it and moves on.
type ErrCampaignMisconfigured struct {
    CampaignID int
    Reason     string
}

func (e *ErrCampaignMisconfigured) Error() string {
    return fmt.Sprintf("campaign %d misconfigured: %s", e.CampaignID, e.Reason)
}

func NewCampaignMisconfigured(id int, reason string) error {
    return &ErrCampaignMisconfigured{CampaignID: id, Reason: reason}
}
