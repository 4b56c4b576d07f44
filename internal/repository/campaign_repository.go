package repository

import (
    "database/sql"
    "time"

    "github.com/lib/pq"

    appErrors "github.com/dicodehq/campaign-engine/internal/errors"
    "github.com/dicodehq/campaign-engine/internal/model"
)

type CampaignRepositoryInterface interface {
    GetByID(id int) (*model.Campaign, error)
    Publish(id int) (bool, error)
    ListPublishedWithReminders() ([]*model.Campaign, error)
    ListPublishedRecurring() ([]*model.Campaign, error)

    // Stats bookkeeping. Increments are atomic in the store so the
    // automatic and manual enrollment paths compose.
    IncrementEnrollmentStats(campaignID, total, notStarted int) error
    MarkCompleted(campaignID int, prior model.EnrollmentStatus) error
}

type CampaignRepository struct {
    DB *sql.DB
}

const campaignColumns = `
    id, organization_id, title, published,
    start_date, end_date, frequency,
    auto_send_invites, send_reminders, reminder_frequency_days, max_reminders, send_confirmations,
    departments, member_ids, cohort_ids, roles, organization_ids, content_item_ids,
    total_enrollments, completed_count, in_progress_count, not_started_count,
    created_at, updated_at
`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
    var c model.Campaign
    err := row.Scan(
        &c.ID, &c.OrganizationID, &c.Title, &c.Published,
        &c.StartDate, &c.EndDate, &c.Frequency,
        &c.AutoSendInvites, &c.SendReminders, &c.ReminderFrequency, &c.MaxReminders, &c.SendConfirmations,
        pq.Array(&c.Departments), pq.Array(&c.MemberIDs), pq.Array(&c.CohortIDs),
        pq.Array(&c.Roles), pq.Array(&c.OrganizationIDs), pq.Array(&c.ContentItemIDs),
        &c.Stats.TotalEnrollments, &c.Stats.CompletedCount, &c.Stats.InProgressCount, &c.Stats.NotStartedCount,
        &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
    query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
    c, err := scanCampaign(r.DB.QueryRow(query, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return c, nil
}

// Publish flips the published flag. The WHERE guard makes republishing a
// no-op, so only the caller that actually flipped the flag emits a change
// event.
func (r *CampaignRepository) Publish(id int) (bool, error) {
    res, err := r.DB.Exec(
        `UPDATE campaigns SET published=true, updated_at=$1 WHERE id=$2 AND published=false`,
        time.Now(), id,
    )
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

func (r *CampaignRepository) listWhere(where string) ([]*model.Campaign, error) {
    query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE ` + where + ` ORDER BY id`
    rows, err := r.DB.Query(query)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    campaigns := []*model.Campaign{}
    for rows.Next() {
        c, err := scanCampaign(rows)
        if err != nil {
            return nil, err
        }
        campaigns = append(campaigns, c)
    }
    return campaigns, rows.Err()
}

func (r *CampaignRepository) ListPublishedWithReminders() ([]*model.Campaign, error) {
    return r.listWhere(`published=true AND send_reminders=true`)
}

func (r *CampaignRepository) ListPublishedRecurring() ([]*model.Campaign, error) {
    return r.listWhere(`published=true AND frequency <> 'none'`)
}

// IncrementEnrollmentStats bumps the enrollment counters by the given
// deltas. Called once per created enrollment rather than as a batch
// snapshot so concurrent enrollment paths never overwrite each other.
func (r *CampaignRepository) IncrementEnrollmentStats(campaignID, total, notStarted int) error {
    query := `
        UPDATE campaigns
        SET total_enrollments = total_enrollments + $1,
            not_started_count = not_started_count + $2,
            updated_at = NOW()
        WHERE id=$3
    `
    _, err := r.DB.Exec(query, total, notStarted, campaignID)
    return err
}

// MarkCompleted adjusts the aggregate counters for one enrollment that just
// completed. The prior status picks which bucket is decremented; both
// decrements clamp at zero.
func (r *CampaignRepository) MarkCompleted(campaignID int, prior model.EnrollmentStatus) error {
    query := `
        UPDATE campaigns
        SET completed_count = completed_count + 1,
            in_progress_count = CASE WHEN $2 = 'in_progress'
                THEN GREATEST(in_progress_count - 1, 0) ELSE in_progress_count END,
            not_started_count = CASE WHEN $2 = 'not_started'
                THEN GREATEST(not_started_count - 1, 0) ELSE not_started_count END,
            updated_at = NOW()
        WHERE id=$1
    `
    _, err := r.DB.Exec(query, campaignID, string(prior))
    return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
