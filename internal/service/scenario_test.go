package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dicodehq/campaign-engine/internal/model"
	"github.com/dicodehq/campaign-engine/internal/service"
)

// Full lifecycle: activation fan-out, invitation delivery, reminder after
// the cadence elapses, then completion detection — all against the same
// in-memory store.
func TestCampaignLifecycle(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	campaign := &model.Campaign{
		ID:                1,
		OrganizationID:    1,
		Title:             "New Hire Ramp",
		Published:         true,
		StartDate:         &start,
		Frequency:         model.FrequencyWeekly,
		AutoSendInvites:   true,
		SendReminders:     true,
		ReminderFrequency: 3,
		MaxReminders:      2,
		SendConfirmations: true,
		ContentItemIDs:    []string{"intro", "tour"},
	}

	campaigns := newFakeCampaignRepo(campaign)
	members := newFakeMemberRepo(&model.Member{ID: 1, OrganizationID: 1, Email: "alice@x.test", DisplayName: "Alice"})
	enrollments := newFakeEnrollmentRepo()
	notifications := newFakeNotificationRepo()
	gateway := &stubMailer{}
	progress := &fakeProgressRepo{}

	enrollSvc := &service.EnrollmentService{
		CampaignRepo: campaigns, MemberRepo: members,
		EnrollmentRepo: enrollments, NotificationRepo: notifications,
	}
	dispatchSvc := &service.DispatchService{
		CampaignRepo: campaigns, NotificationRepo: notifications, Mailer: gateway,
	}
	reminderSvc := &service.ReminderService{
		CampaignRepo: campaigns, MemberRepo: members,
		EnrollmentRepo: enrollments, NotificationRepo: notifications,
	}
	completionSvc := &service.CompletionService{
		CampaignRepo: campaigns, MemberRepo: members, EnrollmentRepo: enrollments,
		ProgressRepo: progress, NotificationRepo: notifications,
	}

	// Activation.
	before := &model.Campaign{ID: 1, OrganizationID: 1, Published: false}
	result, err := enrollSvc.HandlePublish(before, campaign)
	if err != nil {
		t.Fatal(err)
	}
	// The invitation is stamped due inside HandlePublish, so any tick at or
	// after this point picks it up.
	activated := time.Now()
	if result.Enrolled != 1 {
		t.Fatalf("expected 1 enrollment, got %+v", result)
	}
	if n := notifications.byType(model.NotificationInvitation); len(n) != 1 || n[0].Status != model.NotificationPending {
		t.Fatalf("expected 1 pending invitation, got %+v", n)
	}

	// Invitation delivery.
	dr, err := dispatchSvc.Dispatch(context.Background(), activated)
	if err != nil {
		t.Fatal(err)
	}
	if dr.Sent != 1 {
		t.Fatalf("expected invitation sent, got %+v", dr)
	}
	if n := notifications.byType(model.NotificationInvitation); n[0].Status != model.NotificationSent {
		t.Fatal("invitation should be sent")
	}

	// Three days later the first reminder is due; the same-day rerun
	// queues nothing.
	threeDays := activated.Add(72 * time.Hour)
	rr, _ := reminderSvc.Run(threeDays)
	if rr.Queued != 1 {
		t.Fatalf("expected 1 reminder queued after 3 days, got %d", rr.Queued)
	}
	rr, _ = reminderSvc.Run(threeDays)
	if rr.Queued != 0 {
		t.Fatalf("same-day rerun should queue nothing, got %d", rr.Queued)
	}

	// Member finishes both content items.
	progress.rows = []model.ProgressRecord{
		{CampaignID: 1, MemberID: 1, ContentItemID: "intro", Completed: true, AllItemsAnswered: true},
		{CampaignID: 1, MemberID: 1, ContentItemID: "tour", Completed: true, AllItemsAnswered: true},
	}
	if err := completionSvc.HandleProgress(1, 1); err != nil {
		t.Fatal(err)
	}

	c, _ := campaigns.GetByID(1)
	if c.Stats.CompletedCount != 1 {
		t.Fatalf("completed count 0→1 expected, got %d", c.Stats.CompletedCount)
	}
	if n := notifications.byType(model.NotificationCompletion); len(n) != 1 {
		t.Fatalf("expected 1 completion confirmation, got %d", len(n))
	}

	// Redundant progress event: everything unchanged.
	if err := completionSvc.HandleProgress(1, 1); err != nil {
		t.Fatal(err)
	}
	c, _ = campaigns.GetByID(1)
	if c.Stats.CompletedCount != 1 || len(notifications.byType(model.NotificationCompletion)) != 1 {
		t.Fatal("redundant progress event must be a no-op")
	}
}
