// internal/model/enrollment.go
package model

import "time"

type EnrollmentStatus string

const (
    EnrollmentNotStarted EnrollmentStatus = "not_started"
    EnrollmentInProgress EnrollmentStatus = "in_progress"
    EnrollmentCompleted  EnrollmentStatus = "completed"
)

// Enrollment records one member's participation state in one campaign.
// The pair (campaign_id, member_id) is unique; creation is always
// create-if-absent so duplicate trigger deliveries cannot produce two rows.
type Enrollment struct {
    ID             int              `db:"id" json:"id"`
    CampaignID     int              `db:"campaign_id" json:"campaign_id"`
    MemberID       int              `db:"member_id" json:"member_id"`
    OrganizationID int              `db:"organization_id" json:"organization_id"`
    Status         EnrollmentStatus `db:"status" json:"status"`
    EnrolledAt     time.Time        `db:"enrolled_at" json:"enrolled_at"`
    CompletedAt    *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
    AccessCount    int              `db:"access_count" json:"access_count"`
    AutoEnrolled   bool             `db:"auto_enrolled" json:"auto_enrolled"`
    EnrolledBy     string           `db:"enrolled_by" json:"enrolled_by"`
}
