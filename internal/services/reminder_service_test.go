package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/white/sales-tracker/internal/models"
)

type fakeActivityStore struct {
	activities map[string]*models.Activity
	denyClaim  map[string]bool
}

func (s *fakeActivityStore) FindDueNextActions(ctx context.Context, start, end time.Time) ([]*models.Activity, error) {
	var out []*models.Activity
	for _, a := range s.activities {
		if a.NextActionDate == nil || a.NextActionReminderSent || a.NextActionType == "" {
			continue
		}
		d := *a.NextActionDate
		if d.Before(start) || d.After(end) {
			continue
		}
		dup := *a
		out = append(out, &dup)
	}
	return out, nil
}

func (s *fakeActivityStore) ClaimNextActionReminder(ctx context.Context, activityID string) (bool, error) {
	a, ok := s.activities[activityID]
	if !ok {
		return false, errors.New("missing activity")
	}
	if a.NextActionReminderSent || s.denyClaim[activityID] {
		return false, nil
	}
	a.NextActionReminderSent = true
	return true, nil
}

func (s *fakeActivityStore) ReleaseNextActionReminder(ctx context.Context, activityID string) error {
	if a, ok := s.activities[activityID]; ok {
		a.NextActionReminderSent = false
	}
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type fakeProspectStore struct {
	prospects map[string]*models.Prospect
}

func (s *fakeProspectStore) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	if p, ok := s.prospects[id]; ok {
		return p, nil
	}
	return nil, errors.New("prospect not found")
}

type fakeNotifier struct {
	sent    []string
	failFor map[string]error
}

func (n *fakeNotifier) SendNextActionReminder(ctx context.Context, user *models.User, prospect *models.Prospect, activity *models.Activity) error {
	if err, ok := n.failFor[activity.ID]; ok {
		return err
	}
	n.sent = append(n.sent, activity.ID)
	return nil
}

var ist = time.FixedZone("IST", 330*60)

// now is fixed so that "tomorrow" is 2025-06-10 IST.
var dispatchNow = time.Date(2025, 6, 9, 12, 0, 0, 0, ist)

func dueTomorrow(hour int) *time.Time {
	d := time.Date(2025, 6, 10, hour, 0, 0, 0, ist).UTC()
	return &d
}

func newDispatchFixture() (*fakeActivityStore, *fakeUserStore, *fakeProspectStore, *fakeNotifier) {
	activities := &fakeActivityStore{activities: map[string]*models.Activity{
		"act-1": {
			ID:             "act-1",
			Owner:          "user-1",
			ProspectID:     "pros-1",
			NextActionType: models.NextActionCallProspect,
			NextActionDate: dueTomorrow(9),
		},
	}}
	users := &fakeUserStore{users: map[string]*models.User{
		"user-1": {ID: "user-1", Name: "Asha", Email: "asha@example.com"},
	}}
	prospects := &fakeProspectStore{prospects: map[string]*models.Prospect{
		"pros-1": {ID: "pros-1", Name: "Acme Foods"},
	}}
	return activities, users, prospects, &fakeNotifier{failFor: map[string]error{}}
}

func newTestService(a *fakeActivityStore, u *fakeUserStore, p *fakeProspectStore, n *fakeNotifier) *ReminderService {
	return NewReminderService(a, u, p, n, nil, NewBusinessCalendar("IST", 330), time.Second)
}

func TestDispatchSendsAndMarks(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Sent != 1 || summary.Errors != 0 {
		t.Fatalf("expected 1 sent 0 errors, got %+v", summary)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "act-1" {
		t.Fatalf("expected act-1 notified, got %v", notifier.sent)
	}
	if !activities.activities["act-1"].NextActionReminderSent {
		t.Fatalf("expected reminder flag set after successful send")
	}
}

func TestDispatchIsIdempotentAcrossRuns(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	svc := newTestService(activities, users, prospects, notifier)

	if _, err := svc.Run(context.Background(), dispatchNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.Sent != 0 || second.Errors != 0 {
		t.Fatalf("second run must select nothing, got %+v", second)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("reminder sent more than once: %v", notifier.sent)
	}
}

func TestDispatchSkipsOwnerWithoutContactChannel(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	users.users["user-1"].Email = ""
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 0 || summary.Errors != 1 {
		t.Fatalf("expected data-integrity skip, got %+v", summary)
	}
	if len(summary.ErrorDetails) != 1 || summary.ErrorDetails[0].ActivityID != "act-1" {
		t.Fatalf("skip must be attributable: %+v", summary.ErrorDetails)
	}
	if activities.activities["act-1"].NextActionReminderSent {
		t.Fatalf("skipped record must stay eligible")
	}
}

func TestDispatchSkipsBrokenProspectReference(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	delete(prospects.prospects, "pros-1")
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 0 || summary.Errors != 1 {
		t.Fatalf("expected broken reference skip, got %+v", summary)
	}
}

func TestDispatchNotifyFailureKeepsRecordEligible(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	notifier.failFor["act-1"] = errors.New("smtp timeout")
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 0 || summary.Errors != 1 {
		t.Fatalf("expected notify failure recorded, got %+v", summary)
	}
	if activities.activities["act-1"].NextActionReminderSent {
		t.Fatalf("claim must be released after send failure")
	}

	// The next invocation retries and succeeds.
	delete(notifier.failFor, "act-1")
	retry, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if retry.Sent != 1 {
		t.Fatalf("expected retry to send, got %+v", retry)
	}
}

func TestDispatchOneFailureDoesNotAbortBatch(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	activities.activities["act-2"] = &models.Activity{
		ID:                "act-2",
		Owner:             "user-1",
		NextActionDetails: "drop off brochures",
		NextActionType:    models.NextActionCustomTask,
		NextActionDate:    dueTomorrow(16),
	}
	notifier.failFor["act-1"] = errors.New("smtp timeout")
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 1 || summary.Errors != 1 {
		t.Fatalf("expected 1 sent 1 error, got %+v", summary)
	}
}

func TestDispatchLostClaimIsNotCounted(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	activities.denyClaim = map[string]bool{"act-1": true}
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 0 || summary.Errors != 0 {
		t.Fatalf("a lost claim belongs in neither count, got %+v", summary)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("lost claim must not be notified: %v", notifier.sent)
	}
}

func TestDispatchIgnoresEmptySlots(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	activities.activities["act-empty"] = &models.Activity{
		ID:             "act-empty",
		Owner:          "user-1",
		NextActionDate: dueTomorrow(10),
	}
	activities.activities["act-typeless"] = &models.Activity{
		ID:                "act-typeless",
		Owner:             "user-1",
		NextActionDetails: "drop leaflets",
		NextActionDate:    dueTomorrow(11),
	}
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 1 {
		t.Fatalf("untyped slots must not be selected, got %+v", summary)
	}
	if activities.activities["act-typeless"].NextActionReminderSent {
		t.Fatalf("typeless slot must stay untouched")
	}
}

func TestDispatchWindowExcludesLaterDays(t *testing.T) {
	activities, users, prospects, notifier := newDispatchFixture()
	twoDaysOut := time.Date(2025, 6, 11, 0, 0, 1, 0, ist).UTC()
	activities.activities["act-later"] = &models.Activity{
		ID:             "act-later",
		Owner:          "user-1",
		NextActionType: models.NextActionEmailProspect,
		NextActionDate: &twoDaysOut,
	}
	svc := newTestService(activities, users, prospects, notifier)

	summary, err := svc.Run(context.Background(), dispatchNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Sent != 1 {
		t.Fatalf("record due two days out must not be selected, got %+v", summary)
	}
	if activities.activities["act-later"].NextActionReminderSent {
		t.Fatalf("out-of-window record must stay untouched")
	}
}
