package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	appErrors "github.com/dicodehq/campaign-engine/internal/errors"
	"github.com/dicodehq/campaign-engine/internal/model"
)

// In-memory fakes shared by the service tests. They mirror the store
// semantics the repositories rely on: create-if-absent on natural keys,
// guarded conditional updates, clamped counter arithmetic.

// --- Campaign repo ---

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
}

func newFakeCampaignRepo(campaigns ...*model.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: map[int]*model.Campaign{}}
	for _, c := range campaigns {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) Publish(id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Published {
		return false, nil
	}
	c.Published = true
	return true, nil
}

func (r *fakeCampaignRepo) ListPublishedWithReminders() ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.Published && c.SendReminders {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) ListPublishedRecurring() ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.Published && c.Recurring() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) IncrementEnrollmentStats(campaignID, total, notStarted int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Stats.TotalEnrollments += total
	c.Stats.NotStartedCount += notStarted
	return nil
}

func (r *fakeCampaignRepo) MarkCompleted(campaignID int, prior model.EnrollmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Stats.CompletedCount++
	switch prior {
	case model.EnrollmentInProgress:
		if c.Stats.InProgressCount > 0 {
			c.Stats.InProgressCount--
		}
	case model.EnrollmentNotStarted:
		if c.Stats.NotStartedCount > 0 {
			c.Stats.NotStartedCount--
		}
	}
	return nil
}

// --- Member repo ---

type fakeMemberRepo struct {
	members map[int]*model.Member
}

func newFakeMemberRepo(members ...*model.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: map[int]*model.Member{}}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *fakeMemberRepo) GetByID(id int) (*model.Member, error) {
	return r.members[id], nil
}

func (r *fakeMemberRepo) ListByOrganization(orgID int) ([]model.Member, error) {
	out := []model.Member{}
	for id := 0; id < 1000; id++ { // stable order
		m, ok := r.members[id]
		if ok && m.OrganizationID == orgID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// --- Enrollment repo ---

type enrollmentKey struct{ campaignID, memberID int }

type fakeEnrollmentRepo struct {
	mu     sync.Mutex
	rows   map[enrollmentKey]*model.Enrollment
	nextID int

	// failMembers simulates a store error for specific members so the
	// partial-failure behavior can be asserted.
	failMembers map[int]bool
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{rows: map[enrollmentKey]*model.Enrollment{}}
}

func (r *fakeEnrollmentRepo) CreateIfAbsent(e *model.Enrollment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMembers[e.MemberID] {
		return false, fmt.Errorf("store unavailable")
	}
	key := enrollmentKey{e.CampaignID, e.MemberID}
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	r.nextID++
	e.ID = r.nextID
	copied := *e
	r.rows[key] = &copied
	return true, nil
}

func (r *fakeEnrollmentRepo) GetByCampaignAndMember(campaignID, memberID int) (*model.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[enrollmentKey{campaignID, memberID}]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEnrollmentRepo) ListActiveByCampaign(campaignID int) ([]model.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Enrollment{}
	for _, e := range r.rows {
		if e.CampaignID == campaignID && e.Status != model.EnrollmentCompleted {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Complete(campaignID, memberID int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[enrollmentKey{campaignID, memberID}]
	if !ok || e.Status == model.EnrollmentCompleted {
		return false, nil
	}
	e.Status = model.EnrollmentCompleted
	e.CompletedAt = &at
	return true, nil
}

func (r *fakeEnrollmentRepo) CountByStatus(campaignID int) (map[model.EnrollmentStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[model.EnrollmentStatus]int{}
	for _, e := range r.rows {
		if e.CampaignID == campaignID {
			counts[e.Status]++
		}
	}
	return counts, nil
}

// --- Notification repo ---

type fakeNotificationRepo struct {
	mu     sync.Mutex
	rows   []*model.Notification
	nextID int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	if n.Status == "" {
		n.Status = model.NotificationPending
	}
	if n.CreatedAt.IsZero() {
		if !n.ScheduledFor.IsZero() {
			n.CreatedAt = n.ScheduledFor
		} else {
			n.CreatedAt = time.Now()
		}
	}
	copied := *n
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeNotificationRepo) ListDue(now time.Time, limit int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range r.rows {
		if n.Status == model.NotificationPending && !n.ScheduledFor.After(now) {
			copied := *n
			out = append(out, &copied)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkSent(id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id {
			n.Status = model.NotificationSent
			sentAt := at
			n.SentAt = &sentAt
			n.LastError = ""
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkFailed(id int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id {
			n.Status = model.NotificationFailed
			n.LastError = reason
			n.RetryCount++
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Reschedule(id int, at time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id {
			n.ScheduledFor = at
			n.LastError = reason
			n.RetryCount++
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountSentReminders(campaignID, memberID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.rows {
		if n.CampaignID == campaignID && n.MemberID == memberID &&
			n.Type == model.NotificationReminder && n.Status == model.NotificationSent {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) LatestReminder(campaignID, memberID int) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Notification
	for _, n := range r.rows {
		if n.CampaignID != campaignID || n.MemberID != memberID || n.Type != model.NotificationReminder {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeNotificationRepo) ListByCampaign(campaignID int, status string, limit, offset int) ([]*model.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*model.Notification{}
	for _, n := range r.rows {
		if n.CampaignID == campaignID && (status == "" || string(n.Status) == status) {
			copied := *n
			matched = append(matched, &copied)
		}
	}
	total := len(matched)
	if offset >= total {
		return []*model.Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// byType filters the stored notifications for assertions.
func (r *fakeNotificationRepo) byType(t model.NotificationType) []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range r.rows {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// --- Progress repo ---

type fakeProgressRepo struct {
	rows []model.ProgressRecord
}

func (r *fakeProgressRepo) ListByCampaignAndMember(campaignID, memberID int) ([]model.ProgressRecord, error) {
	out := []model.ProgressRecord{}
	for _, p := range r.rows {
		if p.CampaignID == campaignID && p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- Instance repo ---

type instanceKey struct{ campaignID, number int }

type fakeInstanceRepo struct {
	mu   sync.Mutex
	rows map[instanceKey]*model.CampaignInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{rows: map[instanceKey]*model.CampaignInstance{}}
}

func (r *fakeInstanceRepo) MaxInstanceNumber(campaignID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for key := range r.rows {
		if key.campaignID == campaignID && key.number > max {
			max = key.number
		}
	}
	return max, nil
}

func (r *fakeInstanceRepo) CreateIfAbsent(inst *model.CampaignInstance) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := instanceKey{inst.CampaignID, inst.InstanceNumber}
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	copied := *inst
	r.rows[key] = &copied
	return true, nil
}

// --- Mailer stub ---

type sentMail struct {
	to      string
	subject string
	html    string
}

type stubMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (m *stubMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}
