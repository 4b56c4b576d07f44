// internal/service/reminder_service.go
package service

import (
    "log"
    "time"

    appErrors "github.com/dicodehq/campaign-engine/internal/errors"
    "github.com/dicodehq/campaign-engine/internal/model"
    "github.com/dicodehq/campaign-engine/internal/repository"
)

// ReminderService is the daily sweep that queues reminder notifications
// for members who have not finished a campaign. It only produces pending
// rows; delivery belongs to the dispatcher.
type ReminderService struct {
    CampaignRepo     repository.CampaignRepositoryInterface
    MemberRepo       repository.MemberRepositoryInterface
    EnrollmentRepo   repository.EnrollmentRepositoryInterface
    NotificationRepo repository.NotificationRepositoryInterface
}

type ReminderResult struct {
    CampaignsSwept int
    Queued         int
}

func (s *ReminderService) Run(now time.Time) (*ReminderResult, error) {
    campaigns, err := s.CampaignRepo.ListPublishedWithReminders()
    if err != nil {
        return nil, err
    }

    result := &ReminderResult{}
    for _, campaign := range campaigns {
        if campaign.ReminderFrequency <= 0 || campaign.MaxReminders <= 0 {
            log.Println("⚠️ skipping:", appErrors.NewCampaignMisconfigured(campaign.ID, "reminders enabled without cadence or cap"))
            continue
        }
        result.CampaignsSwept++

        queued, err := s.sweepCampaign(campaign, now)
        if err != nil {
            log.Println("⚠️ reminder sweep failed for campaign", campaign.ID, ":", err)
            continue
        }
        result.Queued += queued
    }

    log.Printf("reminder sweep: %d campaigns, %d reminders queued", result.CampaignsSwept, result.Queued)
    return result, nil
}

func (s *ReminderService) sweepCampaign(campaign *model.Campaign, now time.Time) (int, error) {
    enrollments, err := s.EnrollmentRepo.ListActiveByCampaign(campaign.ID)
    if err != nil {
        return 0, err
    }

    queued := 0
    for i := range enrollments {
        e := &enrollments[i]
        due, err := s.reminderDue(campaign, e, now)
        if err != nil {
            log.Println("⚠️ reminder check failed for member", e.MemberID, "in campaign", campaign.ID, ":", err)
            continue
        }
        if !due {
            continue
        }

        member, err := s.MemberRepo.GetByID(e.MemberID)
        if err != nil || member == nil {
            log.Println("⚠️ member", e.MemberID, "missing for campaign", campaign.ID, ", skipping reminder")
            continue
        }

        reminder := &model.Notification{
            CampaignID:     campaign.ID,
            MemberID:       member.ID,
            OrganizationID: campaign.OrganizationID,
            Type:           model.NotificationReminder,
            Status:         model.NotificationPending,
            Recipient:      member.Email,
            ScheduledFor:   now,
            CampaignTitle:  campaign.Title,
            MemberName:     member.DisplayName,
            CreatedAt:      now,
        }
        if err := s.NotificationRepo.Create(reminder); err != nil {
            log.Println("⚠️ failed to queue reminder for member", member.ID, ":", err)
            continue
        }
        queued++
    }
    return queued, nil
}

// reminderDue decides whether one enrollment gets a new reminder this run:
// under the sent cap, and at least the cadence since the newest reminder of
// any status. A member with no prior reminder is always due.
func (s *ReminderService) reminderDue(campaign *model.Campaign, e *model.Enrollment, now time.Time) (bool, error) {
    sent, err := s.NotificationRepo.CountSentReminders(campaign.ID, e.MemberID)
    if err != nil {
        return false, err
    }
    if sent >= campaign.MaxReminders {
        return false, nil
    }

    latest, err := s.NotificationRepo.LatestReminder(campaign.ID, e.MemberID)
    if err != nil {
        return false, err
    }

    elapsedDays := campaign.ReminderFrequency + 1
    if latest != nil {
        elapsedDays = int(now.Sub(latest.CreatedAt).Hours() / 24)
    }
    return elapsedDays >= campaign.ReminderFrequency, nil
}
