package repository

import (
    "database/sql"

    "github.com/dicodehq/campaign-engine/internal/model"
)

// ProgressRepositoryInterface is read-only: progress rows are written by the
// console layer and only aggregated here.
type ProgressRepositoryInterface interface {
    ListByCampaignAndMember(campaignID, memberID int) ([]model.ProgressRecord, error)
}

type ProgressRepository struct {
    DB *sql.DB
}

func (r *ProgressRepository) ListByCampaignAndMember(campaignID, memberID int) ([]model.ProgressRecord, error) {
    query := `
        SELECT id, campaign_id, member_id, content_item_id, completed, all_items_answered, updated_at
        FROM campaign_progress
        WHERE campaign_id=$1 AND member_id=$2
    `
    rows, err := r.DB.Query(query, campaignID, memberID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    records := []model.ProgressRecord{}
    for rows.Next() {
        var p model.ProgressRecord
        if err := rows.Scan(
            &p.ID, &p.CampaignID, &p.MemberID, &p.ContentItemID,
            &p.Completed, &p.AllItemsAnswered, &p.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        records = append(records, p)
    }
    return records, rows.Err()
}

var _ ProgressRepositoryInterface = (*ProgressRepository)(nil)
