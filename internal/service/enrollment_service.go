// internal/service/enrollment_service.go
package service

import (
    "log"
    "time"

    "github.com/dicodehq/campaign-engine/internal/model"
    "github.com/dicodehq/campaign-engine/internal/repository"
)

// EnrollmentService reacts to a campaign's publish transition and owns the
// manual bulk-enroll path. Both go through the same create-if-absent
// primitive, so duplicate trigger deliveries and concurrent paths cannot
// produce duplicate enrollments.
type EnrollmentService struct {
    CampaignRepo     repository.CampaignRepositoryInterface
    MemberRepo       repository.MemberRepositoryInterface
    EnrollmentRepo   repository.EnrollmentRepositoryInterface
    NotificationRepo repository.NotificationRepositoryInterface
}

// EnrollResult summarizes one fan-out run.
type EnrollResult struct {
    CampaignID int `json:"campaign_id"`
    Enrolled   int `json:"enrolled"`
    Skipped    int `json:"skipped"`
    Failed     int `json:"failed"`
}

// HandlePublish is the change-event handler for campaign writes. It only
// acts on the false→true edge of the published flag; level-only rewrites
// and redelivered events fall through as no-ops.
func (s *EnrollmentService) HandlePublish(before, after *model.Campaign) (*EnrollResult, error) {
    if after == nil || !after.Published {
        return nil, nil
    }
    if before != nil && before.Published {
        return nil, nil // already published, not an edge
    }

    if after.OrganizationID == 0 {
        // Configuration error: without an organization there is no audience.
        // Requeueing would never help, so log and drop.
        log.Println("⚠️ campaign", after.ID, "has no organization, skipping enrollment")
        return nil, nil
    }

    members, err := s.MemberRepo.ListByOrganization(after.OrganizationID)
    if err != nil {
        return nil, err
    }

    result := &EnrollResult{CampaignID: after.ID}
    for i := range members {
        m := &members[i]
        if !Matches(after, m) {
            continue
        }
        created, err := s.enroll(after, m, true, "system")
        if err != nil {
            log.Println("⚠️ failed to enroll member", m.ID, "in campaign", after.ID, ":", err)
            result.Failed++
            continue
        }
        if created {
            result.Enrolled++
        } else {
            result.Skipped++
        }
    }

    log.Printf("campaign %d publish: %d enrolled, %d already enrolled, %d failed",
        after.ID, result.Enrolled, result.Skipped, result.Failed)
    return result, nil
}

// EnrollMembers is the manual bulk-enroll path used by the console. It
// honors the same (campaign, member) uniqueness without requiring the
// campaign to be republished.
func (s *EnrollmentService) EnrollMembers(campaignID int, memberIDs []int, actor string) (*EnrollResult, error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }

    result := &EnrollResult{CampaignID: campaignID}
    for _, memberID := range memberIDs {
        member, err := s.MemberRepo.GetByID(memberID)
        if err != nil {
            log.Println("⚠️ failed to fetch member", memberID, ":", err)
            result.Failed++
            continue
        }
        if member == nil || member.OrganizationID != campaign.OrganizationID {
            log.Println("⚠️ member", memberID, "not in campaign organization, skipping")
            result.Failed++
            continue
        }

        created, err := s.enroll(campaign, member, false, actor)
        if err != nil {
            log.Println("⚠️ failed to enroll member", memberID, ":", err)
            result.Failed++
            continue
        }
        if created {
            result.Enrolled++
        } else {
            result.Skipped++
        }
    }
    return result, nil
}

// enroll creates one enrollment if absent. Only the call that created the
// row increments the campaign counters and queues the invitation, so
// retried triggers cannot double-count or double-invite.
func (s *EnrollmentService) enroll(campaign *model.Campaign, member *model.Member, auto bool, actor string) (bool, error) {
    enrollment := &model.Enrollment{
        CampaignID:     campaign.ID,
        MemberID:       member.ID,
        OrganizationID: campaign.OrganizationID,
        Status:         model.EnrollmentNotStarted,
        EnrolledAt:     time.Now(),
        AutoEnrolled:   auto,
        EnrolledBy:     actor,
    }

    created, err := s.EnrollmentRepo.CreateIfAbsent(enrollment)
    if err != nil {
        return false, err
    }
    if !created {
        return false, nil
    }

    if err := s.CampaignRepo.IncrementEnrollmentStats(campaign.ID, 1, 1); err != nil {
        log.Println("⚠️ failed to bump stats for campaign", campaign.ID, ":", err)
    }

    if campaign.AutoSendInvites {
        invitation := &model.Notification{
            CampaignID:     campaign.ID,
            MemberID:       member.ID,
            OrganizationID: campaign.OrganizationID,
            Type:           model.NotificationInvitation,
            Status:         model.NotificationPending,
            Recipient:      member.Email,
            ScheduledFor:   time.Now(),
            CampaignTitle:  campaign.Title,
            MemberName:     member.DisplayName,
        }
        if err := s.NotificationRepo.Create(invitation); err != nil {
            log.Println("⚠️ failed to queue invitation for member", member.ID, ":", err)
        }
    }

    return true, nil
}
