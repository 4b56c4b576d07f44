package repository

import (
    "database/sql"
    "time"

    "github.com/dicodehq/campaign-engine/internal/model"
)

type InstanceRepositoryInterface interface {
    MaxInstanceNumber(campaignID int) (int, error)
    // CreateIfAbsent inserts an instance keyed by (campaign_id,
    // instance_number) and reports whether a new row was created, so
    // repeated daily runs inside the same window stay idempotent.
    CreateIfAbsent(inst *model.CampaignInstance) (bool, error)
}

type InstanceRepository struct {
    DB *sql.DB
}

func (r *InstanceRepository) MaxInstanceNumber(campaignID int) (int, error) {
    var max int
    err := r.DB.QueryRow(
        `SELECT COALESCE(MAX(instance_number), 0) FROM campaign_instances WHERE campaign_id=$1`,
        campaignID,
    ).Scan(&max)
    return max, err
}

func (r *InstanceRepository) CreateIfAbsent(inst *model.CampaignInstance) (bool, error) {
    if inst.CreatedAt.IsZero() {
        inst.CreatedAt = time.Now()
    }
    query := `
        INSERT INTO campaign_instances
            (campaign_id, instance_number, start_date, end_date,
             total_enrollments, completed_count, in_progress_count, not_started_count, created_at)
        VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5)
        ON CONFLICT (campaign_id, instance_number) DO NOTHING
        RETURNING id
    `
    err := r.DB.QueryRow(
        query,
        inst.CampaignID, inst.InstanceNumber, inst.StartDate, inst.EndDate, inst.CreatedAt,
    ).Scan(&inst.ID)
    if err != nil {
        if err == sql.ErrNoRows {
            return false, nil // instance already materialized
        }
        return false, err
    }
    return true, nil
}

var _ InstanceRepositoryInterface = (*InstanceRepository)(nil)
