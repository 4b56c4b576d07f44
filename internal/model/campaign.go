// internal/model/campaign.go
package model

import "time"

// RecurrenceFrequency controls how often the recurrence scheduler spawns
// a new campaign instance.
type RecurrenceFrequency string

const (
    FrequencyNone      RecurrenceFrequency = "none"
    FrequencyWeekly    RecurrenceFrequency = "weekly"
    FrequencyMonthly   RecurrenceFrequency = "monthly"
    FrequencyQuarterly RecurrenceFrequency = "quarterly"
)

// CampaignStats is the aggregate counter block kept on a campaign.
// All mutation goes through atomic increments in the repository.
type CampaignStats struct {
    TotalEnrollments int `db:"total_enrollments" json:"total_enrollments"`
    CompletedCount   int `db:"completed_count" json:"completed_count"`
    InProgressCount  int `db:"in_progress_count" json:"in_progress_count"`
    NotStartedCount  int `db:"not_started_count" json:"not_started_count"`
}

type Campaign struct {
    ID             int    `db:"id" json:"id"`
    OrganizationID int    `db:"organization_id" json:"organization_id"`
    Title          string `db:"title" json:"title"`
    Published      bool   `db:"published" json:"published"`

    // Schedule
    StartDate *time.Time          `db:"start_date" json:"start_date,omitempty"`
    EndDate   *time.Time          `db:"end_date" json:"end_date,omitempty"`
    Frequency RecurrenceFrequency `db:"frequency" json:"frequency"`

    // Automation flags
    AutoSendInvites   bool `db:"auto_send_invites" json:"auto_send_invites"`
    SendReminders     bool `db:"send_reminders" json:"send_reminders"`
    ReminderFrequency int  `db:"reminder_frequency_days" json:"reminder_frequency_days"`
    MaxReminders      int  `db:"max_reminders" json:"max_reminders"`
    SendConfirmations bool `db:"send_confirmations" json:"send_confirmations"`

    // Eligibility filters, each optional. No configured filter means the
    // whole organization is eligible.
    Departments     []string `db:"departments" json:"departments"`
    MemberIDs       []int64  `db:"member_ids" json:"member_ids"`
    CohortIDs       []int64  `db:"cohort_ids" json:"cohort_ids"`
    Roles           []string `db:"roles" json:"roles"`
    OrganizationIDs []int64  `db:"organization_ids" json:"organization_ids"`

    // Ordered content items; their count is the number of steps a member
    // must finish before the enrollment counts as completed.
    ContentItemIDs []string `db:"content_item_ids" json:"content_item_ids"`

    Stats CampaignStats `json:"stats"`

    CreatedAt time.Time  `db:"created_at" json:"created_at"`
    UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// TotalSteps returns the number of content items a member has to complete.
func (c *Campaign) TotalSteps() int {
    return len(c.ContentItemIDs)
}

// Recurring reports whether the recurrence scheduler should track this campaign.
func (c *Campaign) Recurring() bool {
    return c.Frequency != "" && c.Frequency != FrequencyNone
}
