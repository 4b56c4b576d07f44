// internal/model/instance.go
package model

import "time"

// CampaignInstance is one materialized cycle of a recurring campaign.
// (campaign_id, instance_number) is unique; the recurrence scheduler is the
// only writer and instances are never mutated afterwards.
type CampaignInstance struct {
    ID             int           `db:"id" json:"id"`
    CampaignID     int           `db:"campaign_id" json:"campaign_id"`
    InstanceNumber int           `db:"instance_number" json:"instance_number"`
    StartDate      time.Time     `db:"start_date" json:"start_date"`
    EndDate        time.Time     `db:"end_date" json:"end_date"`
    Stats          CampaignStats `json:"stats"`
    CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}
