// internal/service/completion_service.go
package service

import (
    "log"
    "time"

    "github.com/dicodehq/campaign-engine/internal/model"
    "github.com/dicodehq/campaign-engine/internal/repository"
)

// CompletionService reacts to progress writes, aggregates per-item progress
// into an enrollment-level state, and flips the enrollment to completed
// exactly once.
type CompletionService struct {
    CampaignRepo     repository.CampaignRepositoryInterface
    MemberRepo       repository.MemberRepositoryInterface
    EnrollmentRepo   repository.EnrollmentRepositoryInterface
    ProgressRepo     repository.ProgressRepositoryInterface
    NotificationRepo repository.NotificationRepositoryInterface
}

// HandleProgress is the change-event handler for progress writes. Safe to
// invoke redundantly: the guarded enrollment update wins at most once, and
// only the winner touches counters or queues the confirmation.
func (s *CompletionService) HandleProgress(campaignID, memberID int) error {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }

    total := campaign.TotalSteps()
    if total == 0 {
        // No content items means completion is undefined for this campaign.
        return nil
    }

    records, err := s.ProgressRepo.ListByCampaignAndMember(campaignID, memberID)
    if err != nil {
        return err
    }

    finished := 0
    for i := range records {
        if records[i].Finished() {
            finished++
        }
    }
    if finished < total {
        return nil
    }

    enrollment, err := s.EnrollmentRepo.GetByCampaignAndMember(campaignID, memberID)
    if err != nil {
        return err
    }
    if enrollment == nil || enrollment.Status == model.EnrollmentCompleted {
        return nil
    }
    prior := enrollment.Status

    completed, err := s.EnrollmentRepo.Complete(campaignID, memberID, time.Now())
    if err != nil {
        return err
    }
    if !completed {
        return nil // a concurrent invocation got there first
    }

    if err := s.CampaignRepo.MarkCompleted(campaignID, prior); err != nil {
        log.Println("⚠️ failed to adjust counters for campaign", campaignID, ":", err)
    }

    if campaign.SendConfirmations {
        s.queueConfirmation(campaign, memberID)
    }

    log.Println("✅ member", memberID, "completed campaign", campaignID)
    return nil
}

func (s *CompletionService) queueConfirmation(campaign *model.Campaign, memberID int) {
    member, err := s.MemberRepo.GetByID(memberID)
    if err != nil || member == nil {
        log.Println("⚠️ member", memberID, "missing, skipping completion confirmation")
        return
    }

    confirmation := &model.Notification{
        CampaignID:     campaign.ID,
        MemberID:       member.ID,
        OrganizationID: campaign.OrganizationID,
        Type:           model.NotificationCompletion,
        Status:         model.NotificationPending,
        Recipient:      member.Email,
        ScheduledFor:   time.Now(),
        CampaignTitle:  campaign.Title,
        MemberName:     member.DisplayName,
    }
    if err := s.NotificationRepo.Create(confirmation); err != nil {
        log.Println("⚠️ failed to queue completion confirmation for member", member.ID, ":", err)
    }
}
