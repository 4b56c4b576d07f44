// internal/model/progress.go
package model

import "time"

// ProgressRecord is written by the console layer, one row per
// (campaign, member, content item). The completion detector only reads it.
// An item counts as finished when both flags are true.
type ProgressRecord struct {
    ID               int       `db:"id" json:"id"`
    CampaignID       int       `db:"campaign_id" json:"campaign_id"`
    MemberID         int       `db:"member_id" json:"member_id"`
    ContentItemID    string    `db:"content_item_id" json:"content_item_id"`
    Completed        bool      `db:"completed" json:"completed"`
    AllItemsAnswered bool      `db:"all_items_answered" json:"all_items_answered"`
    UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Finished reports whether this content item counts toward completion.
func (p *ProgressRecord) Finished() bool {
    return p.Completed && p.AllItemsAnswered
}
