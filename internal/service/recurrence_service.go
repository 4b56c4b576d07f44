// internal/service/recurrence_service.go
package service

import (
    "log"
    "time"

    appErrors "github.com/dicodehq/campaign-engine/internal/errors"
    "github.com/dicodehq/campaign-engine/internal/model"
    "github.com/dicodehq/campaign-engine/internal/repository"
)

// RecurrenceService is the daily sweep that materializes the next
// time-boxed instance of every recurring campaign. Windows are anchored to
// the campaign's original start date, so the instance numbering is stable
// no matter when the sweep runs.
type RecurrenceService struct {
    CampaignRepo repository.CampaignRepositoryInterface
    InstanceRepo repository.InstanceRepositoryInterface
}

type RecurrenceResult struct {
    CampaignsSwept int
    Created        int
}

func (s *RecurrenceService) Run(now time.Time) (*RecurrenceResult, error) {
    campaigns, err := s.CampaignRepo.ListPublishedRecurring()
    if err != nil {
        return nil, err
    }

    result := &RecurrenceResult{}
    for _, campaign := range campaigns {
        if !campaign.Recurring() {
            continue
        }
        if campaign.StartDate == nil {
            log.Println("⚠️ skipping:", appErrors.NewCampaignMisconfigured(campaign.ID, "recurring without a start date"))
            continue
        }
        result.CampaignsSwept++

        created, err := s.materialize(campaign, now)
        if err != nil {
            log.Println("⚠️ recurrence failed for campaign", campaign.ID, ":", err)
            continue
        }
        if created {
            result.Created++
        }
    }

    log.Printf("recurrence sweep: %d campaigns, %d instances created", result.CampaignsSwept, result.Created)
    return result, nil
}

func (s *RecurrenceService) materialize(campaign *model.Campaign, now time.Time) (bool, error) {
    max, err := s.InstanceRepo.MaxInstanceNumber(campaign.ID)
    if err != nil {
        return false, err
    }
    next := max + 1

    windowStart := advance(*campaign.StartDate, campaign.Frequency, next-1)
    windowEnd := advance(*campaign.StartDate, campaign.Frequency, next)

    if now.Before(windowStart) || !now.Before(windowEnd) {
        return false, nil
    }

    instance := &model.CampaignInstance{
        CampaignID:     campaign.ID,
        InstanceNumber: next,
        StartDate:      windowStart,
        EndDate:        windowEnd,
    }
    created, err := s.InstanceRepo.CreateIfAbsent(instance)
    if err != nil {
        return false, err
    }
    if created {
        log.Printf("campaign %d: created instance %d [%s, %s)",
            campaign.ID, next, windowStart.Format(time.DateOnly), windowEnd.Format(time.DateOnly))
    }
    return created, nil
}

// advance offsets a start date by n recurrence periods. Weekly periods are
// 7 days; monthly and quarterly use calendar months.
func advance(start time.Time, freq model.RecurrenceFrequency, periods int) time.Time {
    switch freq {
    case model.FrequencyWeekly:
        return start.AddDate(0, 0, 7*periods)
    case model.FrequencyMonthly:
        return start.AddDate(0, periods, 0)
    case model.FrequencyQuarterly:
        return start.AddDate(0, 3*periods, 0)
    }
    return start
}
