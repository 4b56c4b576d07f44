// internal/model/notification.go
package model

import "time"

type NotificationType string

const (
    NotificationInvitation NotificationType = "invitation"
    NotificationReminder   NotificationType = "reminder"
    NotificationCompletion NotificationType = "completion"
)

type NotificationStatus string

const (
    NotificationPending NotificationStatus = "pending"
    NotificationSent    NotificationStatus = "sent"
    NotificationFailed  NotificationStatus = "failed"
)

// Notification is one outbound email job. Pending rows due by ScheduledFor
// are drained by the dispatcher; a failed send is rescheduled with backoff
// until RetryCount reaches the dispatcher's attempt limit.
type Notification struct {
    ID             int                `db:"id" json:"id"`
    CampaignID     int                `db:"campaign_id" json:"campaign_id"`
    MemberID       int                `db:"member_id" json:"member_id"`
    OrganizationID int                `db:"organization_id" json:"organization_id"`
    Type           NotificationType   `db:"type" json:"type"`
    Status         NotificationStatus `db:"status" json:"status"`
    Recipient      string             `db:"recipient" json:"recipient"`
    ScheduledFor   time.Time          `db:"scheduled_for" json:"scheduled_for"`
    SentAt         *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
    RetryCount     int                `db:"retry_count" json:"retry_count"`
    LastError      string             `db:"last_error" json:"last_error,omitempty"`

    // Rendering metadata captured at queue time.
    CampaignTitle string `db:"campaign_title" json:"campaign_title"`
    MemberName    string `db:"member_name" json:"member_name"`

    CreatedAt time.Time `db:"created_at" json:"created_at"`
    UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
