package services

import (
	"time"

	"github.com/white/sales-tracker/internal/models"
)

// NextActionFields is the full set of next-action fields the state machine
// produces for persistence. The machine is pure: it performs no I/O and
// raises no domain errors; callers are responsible for validating input
// (date required when type or details present, details required for
// custom-task) before invoking it.
type NextActionFields struct {
	Type         models.NextActionType
	Details      string
	Date         *time.Time
	Status       models.NextActionStatus
	ReminderSent bool
	CompletedAt  *time.Time
}

// NextActionDefinition is the validated input for a define/replace call.
type NextActionDefinition struct {
	Type    models.NextActionType
	Details string
	Date    *time.Time
}

// NextActionFromActivity extracts the current next-action slot.
func NextActionFromActivity(a *models.Activity) NextActionFields {
	return NextActionFields{
		Type:         a.NextActionType,
		Details:      a.NextActionDetails,
		Date:         a.NextActionDate,
		Status:       a.NextActionStatus,
		ReminderSent: a.NextActionReminderSent,
		CompletedAt:  a.NextActionCompletedAt,
	}
}

// ApplyToActivity writes the field set back onto the activity.
func (f NextActionFields) ApplyToActivity(a *models.Activity) {
	a.NextActionType = f.Type
	a.NextActionDetails = f.Details
	a.NextActionDate = f.Date
	a.NextActionStatus = f.Status
	a.NextActionReminderSent = f.ReminderSent
	a.NextActionCompletedAt = f.CompletedAt
}

func (f NextActionFields) hasContent() bool {
	return f.Type != "" || f.Details != ""
}

// nextActionEvent is what happened to the slot. Reschedule is the special
// case of a definition that keeps type and details and only moves the date.
type nextActionEvent int

const (
	eventDefine nextActionEvent = iota
	eventReschedule
	eventComplete
	eventCancel
	eventRemove
)

// statusNone is the zero state before any next action has been defined, and
// again after removal.
const statusNone models.NextActionStatus = ""

// transitionTable makes every lifecycle edge explicit, including the reopen
// edges out of COMPLETED and CANCELLED: those states are soft-terminal, and
// a fresh definition always re-enters an active state. An absent edge means
// the event leaves the status unchanged.
var transitionTable = map[models.NextActionStatus]map[nextActionEvent]models.NextActionStatus{
	statusNone: {
		eventDefine:     models.NextActionPending,
		eventReschedule: models.NextActionPending,
	},
	models.NextActionPending: {
		eventDefine:     models.NextActionPending,
		eventReschedule: models.NextActionRescheduled,
		eventComplete:   models.NextActionCompleted,
		eventCancel:     models.NextActionCancelled,
		eventRemove:     statusNone,
	},
	models.NextActionRescheduled: {
		eventDefine:     models.NextActionPending,
		eventReschedule: models.NextActionRescheduled,
		eventComplete:   models.NextActionCompleted,
		eventCancel:     models.NextActionCancelled,
		eventRemove:     statusNone,
	},
	models.NextActionCompleted: {
		eventDefine:     models.NextActionPending,
		eventReschedule: models.NextActionRescheduled,
		eventComplete:   models.NextActionCompleted,
		eventCancel:     models.NextActionCancelled,
		eventRemove:     statusNone,
	},
	models.NextActionCancelled: {
		eventDefine:     models.NextActionPending,
		eventReschedule: models.NextActionRescheduled,
		eventComplete:   models.NextActionCompleted,
		eventCancel:     models.NextActionCancelled,
		eventRemove:     statusNone,
	},
}

func nextStatus(current models.NextActionStatus, ev nextActionEvent) models.NextActionStatus {
	if edges, ok := transitionTable[current]; ok {
		if to, ok := edges[ev]; ok {
			return to
		}
	}
	return current
}

// DefineNextAction sets or replaces the next-action slot. A call that keeps
// the previous type and details and only moves the due date is a reschedule;
// anything else (including the very first definition) yields PENDING. The
// reminder flag and completion timestamp are always cleared so a reminder
// already sent for an old due date can never suppress one for the new date.
func DefineNextAction(current NextActionFields, def NextActionDefinition) NextActionFields {
	ev := eventDefine
	if current.hasContent() && def.Type == current.Type && def.Details == current.Details {
		ev = eventReschedule
	}
	return NextActionFields{
		Type:         def.Type,
		Details:      def.Details,
		Date:         def.Date,
		Status:       nextStatus(current.Status, ev),
		ReminderSent: false,
		CompletedAt:  nil,
	}
}

// RemoveNextAction clears the slot entirely. Only an explicit removal does
// this; the dispatch job never clears a next action.
func RemoveNextAction(current NextActionFields) NextActionFields {
	return NextActionFields{Status: nextStatus(current.Status, eventRemove)}
}

// CompleteNextAction marks the slot completed, stamping CompletedAt on the
// first call only. Re-completing an already-completed action is a no-op: the
// original timestamp is preserved.
func CompleteNextAction(current NextActionFields, now time.Time) NextActionFields {
	next := current
	next.Status = nextStatus(current.Status, eventComplete)
	if current.Status != models.NextActionCompleted || current.CompletedAt == nil {
		t := now
		next.CompletedAt = &t
	}
	return next
}

// CancelNextAction marks the slot cancelled. Idempotent; type, details, date
// and any completion timestamp are left untouched.
func CancelNextAction(current NextActionFields) NextActionFields {
	next := current
	next.Status = nextStatus(current.Status, eventCancel)
	return next
}

// ApplyReminderReset enforces the two reset invariants on an arbitrary edit:
// the reminder flag is forced back to false whenever the edit changed any of
// type, details or date, and whenever the status moved into PENDING or
// RESCHEDULED while the flag was set. Generic update paths must funnel
// through this so the rule holds regardless of which endpoint performed the
// edit.
func ApplyReminderReset(prev, next NextActionFields) NextActionFields {
	if !next.ReminderSent {
		return next
	}
	if next.Type != prev.Type || next.Details != prev.Details || !timePtrEqual(next.Date, prev.Date) {
		next.ReminderSent = false
		return next
	}
	movedToActive := next.Status == models.NextActionPending || next.Status == models.NextActionRescheduled
	if movedToActive && next.Status != prev.Status {
		next.ReminderSent = false
	}
	return next
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
