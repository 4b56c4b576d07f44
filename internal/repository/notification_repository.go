package repository

import (
    "database/sql"
    "time"

    "github.com/dicodehq/campaign-engine/internal/model"
)

type NotificationRepositoryInterface interface {
    Create(n *model.Notification) error
    ListDue(now time.Time, limit int) ([]*model.Notification, error)

    MarkSent(id int, at time.Time) error
    MarkFailed(id int, reason string) error
    // Reschedule keeps a failed attempt pending, pushes scheduled_for out
    // and bumps retry_count.
    Reschedule(id int, at time.Time, reason string) error

    CountSentReminders(campaignID, memberID int) (int, error)
    LatestReminder(campaignID, memberID int) (*model.Notification, error)

    ListByCampaign(campaignID int, status string, limit, offset int) ([]*model.Notification, int, error)
}

type NotificationRepository struct {
    DB *sql.DB
}

const notificationColumns = `
    id, campaign_id, member_id, organization_id, type, status,
    recipient, scheduled_for, sent_at, retry_count, last_error,
    campaign_title, member_name, created_at, updated_at
`

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
    var n model.Notification
    err := row.Scan(
        &n.ID, &n.CampaignID, &n.MemberID, &n.OrganizationID, &n.Type, &n.Status,
        &n.Recipient, &n.ScheduledFor, &n.SentAt, &n.RetryCount, &n.LastError,
        &n.CampaignTitle, &n.MemberName, &n.CreatedAt, &n.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &n, nil
}

func (r *NotificationRepository) Create(n *model.Notification) error {
    now := time.Now()
    if n.CreatedAt.IsZero() {
        n.CreatedAt = now
    }
    n.UpdatedAt = now
    if n.Status == "" {
        n.Status = model.NotificationPending
    }
    if n.ScheduledFor.IsZero() {
        n.ScheduledFor = now
    }
    query := `
        INSERT INTO campaign_notifications
            (campaign_id, member_id, organization_id, type, status, recipient,
             scheduled_for, retry_count, last_error, campaign_title, member_name,
             created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `
    return r.DB.QueryRow(
        query,
        n.CampaignID, n.MemberID, n.OrganizationID, n.Type, n.Status, n.Recipient,
        n.ScheduledFor, n.RetryCount, n.LastError, n.CampaignTitle, n.MemberName,
        n.CreatedAt, n.UpdatedAt,
    ).Scan(&n.ID)
}

// ListDue returns the pending notifications due by now, oldest first,
// capped to limit so one sweep stays bounded.
func (r *NotificationRepository) ListDue(now time.Time, limit int) ([]*model.Notification, error) {
    query := `SELECT ` + notificationColumns + `
              FROM campaign_notifications
              WHERE status='pending' AND scheduled_for <= $1
              ORDER BY scheduled_for
              LIMIT $2`
    rows, err := r.DB.Query(query, now, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    notifications := []*model.Notification{}
    for rows.Next() {
        n, err := scanNotification(rows)
        if err != nil {
            return nil, err
        }
        notifications = append(notifications, n)
    }
    return notifications, rows.Err()
}

func (r *NotificationRepository) MarkSent(id int, at time.Time) error {
    query := `UPDATE campaign_notifications
              SET status='sent', sent_at=$1, last_error='', updated_at=NOW()
              WHERE id=$2`
    _, err := r.DB.Exec(query, at, id)
    return err
}

func (r *NotificationRepository) MarkFailed(id int, reason string) error {
    query := `UPDATE campaign_notifications
              SET status='failed', last_error=$1, retry_count=retry_count+1, updated_at=NOW()
              WHERE id=$2`
    _, err := r.DB.Exec(query, reason, id)
    return err
}

func (r *NotificationRepository) Reschedule(id int, at time.Time, reason string) error {
    query := `UPDATE campaign_notifications
              SET scheduled_for=$1, last_error=$2, retry_count=retry_count+1, updated_at=NOW()
              WHERE id=$3`
    _, err := r.DB.Exec(query, at, reason, id)
    return err
}

func (r *NotificationRepository) CountSentReminders(campaignID, memberID int) (int, error) {
    var count int
    err := r.DB.QueryRow(
        `SELECT COUNT(*) FROM campaign_notifications
         WHERE campaign_id=$1 AND member_id=$2 AND type='reminder' AND status='sent'`,
        campaignID, memberID,
    ).Scan(&count)
    return count, err
}

// LatestReminder returns the newest reminder of any status for the pair,
// or nil when none exists yet.
func (r *NotificationRepository) LatestReminder(campaignID, memberID int) (*model.Notification, error) {
    query := `SELECT ` + notificationColumns + `
              FROM campaign_notifications
              WHERE campaign_id=$1 AND member_id=$2 AND type='reminder'
              ORDER BY created_at DESC
              LIMIT 1`
    n, err := scanNotification(r.DB.QueryRow(query, campaignID, memberID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return n, nil
}

func (r *NotificationRepository) ListByCampaign(campaignID int, status string, limit, offset int) ([]*model.Notification, int, error) {
    query := `SELECT ` + notificationColumns + `
              FROM campaign_notifications
              WHERE campaign_id=$1 AND ($2 = '' OR status=$2)
              ORDER BY id DESC
              LIMIT $3 OFFSET $4`
    rows, err := r.DB.Query(query, campaignID, status, limit, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    notifications := []*model.Notification{}
    for rows.Next() {
        n, err := scanNotification(rows)
        if err != nil {
            return nil, 0, err
        }
        notifications = append(notifications, n)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }

    var total int
    err = r.DB.QueryRow(
        `SELECT COUNT(*) FROM campaign_notifications WHERE campaign_id=$1 AND ($2 = '' OR status=$2)`,
        campaignID, status,
    ).Scan(&total)
    if err != nil {
        return nil, 0, err
    }

    return notifications, total, nil
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
