// internal/service/dispatch_service.go
package service

import (
    "context"
    "log"
    "time"

    appErrors "github.com/dicodehq/campaign-engine/internal/errors"
    "github.com/dicodehq/campaign-engine/internal/mailer"
    "github.com/dicodehq/campaign-engine/internal/model"
    "github.com/dicodehq/campaign-engine/internal/repository"
)

const (
    // DispatchBatchSize caps per-run work; anything left over is picked up
    // on the next tick.
    DispatchBatchSize = 100

    // maxSendAttempts bounds the retry loop. A send that has already
    // failed this many times is marked failed for good.
    maxSendAttempts = 3

    retryBackoffBase = 15 * time.Minute
)

// DispatchService drains due pending notifications and delivers them
// through the email gateway, one bounded batch per tick.
type DispatchService struct {
    CampaignRepo     repository.CampaignRepositoryInterface
    NotificationRepo repository.NotificationRepositoryInterface
    Mailer           mailer.Mailer
}

type DispatchResult struct {
    Processed int
    Sent      int
    Retried   int
    Failed    int
    Skipped   int
}

// Dispatch processes one batch. An error on one notification never aborts
// the rest of the batch; a run-level error is only returned when the due
// query itself fails.
func (s *DispatchService) Dispatch(ctx context.Context, now time.Time) (*DispatchResult, error) {
    due, err := s.NotificationRepo.ListDue(now, DispatchBatchSize)
    if err != nil {
        return nil, err
    }

    result := &DispatchResult{}
    for _, n := range due {
        result.Processed++
        s.deliver(ctx, n, now, result)
    }

    if result.Processed > 0 {
        log.Printf("dispatch: %d processed, %d sent, %d retried, %d failed, %d skipped",
            result.Processed, result.Sent, result.Retried, result.Failed, result.Skipped)
    }
    return result, nil
}

func (s *DispatchService) deliver(ctx context.Context, n *model.Notification, now time.Time, result *DispatchResult) {
    campaign, err := s.CampaignRepo.GetByID(n.CampaignID)
    if err != nil {
        if _, ok := err.(*appErrors.ErrCampaignNotFound); ok {
            // Campaign deleted since the notification was queued.
            log.Println("⚠️ notification", n.ID, "references missing campaign", n.CampaignID, ", dropping")
            if err := s.NotificationRepo.MarkFailed(n.ID, "campaign no longer exists"); err != nil {
                log.Println("⚠️ failed to mark notification", n.ID, "failed:", err)
            }
            result.Skipped++
            return
        }
        log.Println("⚠️ failed to load campaign", n.CampaignID, "for notification", n.ID, ":", err)
        result.Skipped++
        return
    }

    // A reminder queued by a racing scheduler run must not push the pair
    // past the campaign's cap once delivered.
    if n.Type == model.NotificationReminder {
        sent, err := s.NotificationRepo.CountSentReminders(n.CampaignID, n.MemberID)
        if err != nil {
            log.Println("⚠️ failed to count sent reminders for notification", n.ID, ":", err)
            result.Skipped++
            return
        }
        if sent >= campaign.MaxReminders {
            if err := s.NotificationRepo.MarkFailed(n.ID, "reminder limit reached"); err != nil {
                log.Println("⚠️ failed to discard capped reminder", n.ID, ":", err)
            }
            result.Skipped++
            return
        }
    }

    subject, body := Render(n, campaign)

    if err := s.Mailer.Send(ctx, n.Recipient, subject, body); err != nil {
        s.recordFailure(n, now, err)
        if n.RetryCount+1 >= maxSendAttempts {
            result.Failed++
        } else {
            result.Retried++
        }
        return
    }

    if err := s.NotificationRepo.MarkSent(n.ID, now); err != nil {
        log.Println("⚠️ failed to mark notification", n.ID, "sent:", err)
        return
    }
    result.Sent++
}

// recordFailure applies the bounded-retry policy: re-queue with backoff
// until the attempt limit, then mark failed for good.
func (s *DispatchService) recordFailure(n *model.Notification, now time.Time, sendErr error) {
    attempts := n.RetryCount + 1
    if attempts >= maxSendAttempts {
        if err := s.NotificationRepo.MarkFailed(n.ID, sendErr.Error()); err != nil {
            log.Println("⚠️ failed to mark notification", n.ID, "failed:", err)
        }
        log.Println("⚠️ notification", n.ID, "permanently failed after", attempts, "attempts:", sendErr)
        return
    }

    backoff := retryBackoffBase * time.Duration(1<<n.RetryCount)
    if err := s.NotificationRepo.Reschedule(n.ID, now.Add(backoff), sendErr.Error()); err != nil {
        log.Println("⚠️ failed to reschedule notification", n.ID, ":", err)
        return
    }
    log.Println("⚠️ notification", n.ID, "send failed, retrying in", backoff, ":", sendErr)
}
