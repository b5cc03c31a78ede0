package services

import (
	"testing"
	"time"

	"github.com/white/sales-tracker/internal/models"
)

func datePtr(t time.Time) *time.Time { return &t }

var (
	due     = time.Date(2025, 6, 10, 9, 0, 0, 0, time.FixedZone("IST", 330*60))
	dueNext = time.Date(2025, 6, 12, 9, 0, 0, 0, time.FixedZone("IST", 330*60))
)

func TestDefineFirstNextAction(t *testing.T) {
	got := DefineNextAction(NextActionFields{}, NextActionDefinition{
		Type: models.NextActionCallProspect,
		Date: datePtr(due),
	})

	if got.Status != models.NextActionPending {
		t.Fatalf("expected PENDING, got %s", got.Status)
	}
	if got.ReminderSent {
		t.Fatalf("expected reminderSent=false after define")
	}
	if got.CompletedAt != nil {
		t.Fatalf("expected completedAt=nil after define")
	}
}

func TestDefineDateOnlyChangeReschedules(t *testing.T) {
	current := NextActionFields{
		Type:         models.NextActionCallProspect,
		Date:         datePtr(due),
		Status:       models.NextActionPending,
		ReminderSent: true,
	}

	got := DefineNextAction(current, NextActionDefinition{
		Type: models.NextActionCallProspect,
		Date: datePtr(dueNext),
	})

	if got.Status != models.NextActionRescheduled {
		t.Fatalf("expected RESCHEDULED, got %s", got.Status)
	}
	if got.ReminderSent {
		t.Fatalf("reminder flag must reset on reschedule")
	}
	if !got.Date.Equal(dueNext) {
		t.Fatalf("expected date %v, got %v", dueNext, got.Date)
	}
}

func TestDefineTypeChangeYieldsPending(t *testing.T) {
	current := NextActionFields{
		Type:   models.NextActionCallProspect,
		Date:   datePtr(due),
		Status: models.NextActionRescheduled,
	}

	got := DefineNextAction(current, NextActionDefinition{
		Type: models.NextActionEmailProspect,
		Date: datePtr(dueNext),
	})

	if got.Status != models.NextActionPending {
		t.Fatalf("expected PENDING when type changes, got %s", got.Status)
	}
}

func TestDefineDetailsChangeYieldsPending(t *testing.T) {
	current := NextActionFields{
		Type:    models.NextActionCustomTask,
		Details: "drop off samples",
		Date:    datePtr(due),
		Status:  models.NextActionPending,
	}

	got := DefineNextAction(current, NextActionDefinition{
		Type:    models.NextActionCustomTask,
		Details: "collect feedback",
		Date:    datePtr(due),
	})

	if got.Status != models.NextActionPending {
		t.Fatalf("expected PENDING when details change, got %s", got.Status)
	}
}

func TestDefineReopensCompletedAction(t *testing.T) {
	completedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := NextActionFields{
		Type:        models.NextActionCallProspect,
		Date:        datePtr(due),
		Status:      models.NextActionCompleted,
		CompletedAt: &completedAt,
	}

	got := DefineNextAction(current, NextActionDefinition{
		Type: models.NextActionCallProspect,
		Date: datePtr(dueNext),
	})

	if got.Status != models.NextActionRescheduled {
		t.Fatalf("expected completed action to reopen as RESCHEDULED, got %s", got.Status)
	}
	if got.CompletedAt != nil {
		t.Fatalf("expected completedAt cleared on reopen")
	}
}

func TestDefineReopensCancelledActionWithNewType(t *testing.T) {
	current := NextActionFields{
		Type:   models.NextActionSendSamples,
		Date:   datePtr(due),
		Status: models.NextActionCancelled,
	}

	got := DefineNextAction(current, NextActionDefinition{
		Type: models.NextActionScheduleMeeting,
		Date: datePtr(dueNext),
	})

	if got.Status != models.NextActionPending {
		t.Fatalf("expected cancelled action to reopen as PENDING, got %s", got.Status)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	current := NextActionFields{
		Type:   models.NextActionCallProspect,
		Date:   datePtr(due),
		Status: models.NextActionPending,
	}

	first := CompleteNextAction(current, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC))
	if first.Status != models.NextActionCompleted {
		t.Fatalf("expected COMPLETED, got %s", first.Status)
	}
	if first.CompletedAt == nil {
		t.Fatalf("expected completedAt stamped on first completion")
	}

	second := CompleteNextAction(first, time.Date(2025, 6, 9, 11, 30, 0, 0, time.UTC))
	if second.Status != models.NextActionCompleted {
		t.Fatalf("expected COMPLETED after re-complete, got %s", second.Status)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completedAt must not be re-stamped: first=%v second=%v", first.CompletedAt, second.CompletedAt)
	}
	if second.Type != first.Type || !second.Date.Equal(*first.Date) {
		t.Fatalf("complete must not alter type or date")
	}
}

func TestCancelIsIdempotentAndKeepsFields(t *testing.T) {
	completedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := NextActionFields{
		Type:        models.NextActionCallProspect,
		Date:        datePtr(due),
		Status:      models.NextActionRescheduled,
		CompletedAt: &completedAt,
	}

	first := CancelNextAction(current)
	second := CancelNextAction(first)

	if first.Status != models.NextActionCancelled || second.Status != models.NextActionCancelled {
		t.Fatalf("expected CANCELLED, got %s then %s", first.Status, second.Status)
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(completedAt) {
		t.Fatalf("cancel must not touch completedAt")
	}
	if second.Type != current.Type || !second.Date.Equal(due) {
		t.Fatalf("cancel must not alter type or date")
	}
}

func TestRemoveClearsSlot(t *testing.T) {
	current := NextActionFields{
		Type:         models.NextActionCallProspect,
		Details:      "intro call",
		Date:         datePtr(due),
		Status:       models.NextActionPending,
		ReminderSent: true,
	}

	got := RemoveNextAction(current)

	if got.Type != "" || got.Details != "" || got.Date != nil {
		t.Fatalf("expected slot cleared, got %+v", got)
	}
	if got.Status != "" {
		t.Fatalf("expected empty status after removal, got %s", got.Status)
	}
	if got.ReminderSent {
		t.Fatalf("expected reminderSent=false after removal")
	}
}

func TestApplyReminderResetOnDateChange(t *testing.T) {
	prev := NextActionFields{
		Type:         models.NextActionCallProspect,
		Date:         datePtr(due),
		Status:       models.NextActionPending,
		ReminderSent: true,
	}
	next := prev
	next.Date = datePtr(dueNext)

	got := ApplyReminderReset(prev, next)
	if got.ReminderSent {
		t.Fatalf("date change must force reminderSent=false")
	}
}

func TestApplyReminderResetOnStatusTransition(t *testing.T) {
	prev := NextActionFields{
		Type:         models.NextActionCallProspect,
		Date:         datePtr(due),
		Status:       models.NextActionCompleted,
		ReminderSent: true,
	}
	next := prev
	next.Status = models.NextActionPending

	got := ApplyReminderReset(prev, next)
	if got.ReminderSent {
		t.Fatalf("transition back to PENDING must force reminderSent=false")
	}
}

func TestApplyReminderResetLeavesUnrelatedEditsAlone(t *testing.T) {
	prev := NextActionFields{
		Type:         models.NextActionCallProspect,
		Date:         datePtr(due),
		Status:       models.NextActionPending,
		ReminderSent: true,
	}
	next := prev

	got := ApplyReminderReset(prev, next)
	if !got.ReminderSent {
		t.Fatalf("an edit not touching the slot must keep reminderSent=true")
	}
}

// The documented example scenario end to end: define, remind, reschedule.
func TestDefineRemindRescheduleScenario(t *testing.T) {
	defined := DefineNextAction(NextActionFields{}, NextActionDefinition{
		Type: models.NextActionCallProspect,
		Date: datePtr(due),
	})
	if defined.Status != models.NextActionPending || defined.ReminderSent {
		t.Fatalf("after define: status=%s reminderSent=%v", defined.Status, defined.ReminderSent)
	}

	// The dispatch job flips the flag.
	reminded := defined
	reminded.ReminderSent = true

	rescheduled := DefineNextAction(reminded, NextActionDefinition{
		Type: models.NextActionCallProspect,
		Date: datePtr(dueNext),
	})
	if rescheduled.Status != models.NextActionRescheduled {
		t.Fatalf("expected RESCHEDULED, got %s", rescheduled.Status)
	}
	if rescheduled.ReminderSent {
		t.Fatalf("expected eligibility restored after reschedule")
	}
}
