package models

import (
	"time"
)

// NextActionType enumerates the kinds of follow-up that can be attached to
// an activity. An empty value means "no next action defined".
type NextActionType string

const (
	NextActionCallProspect    NextActionType = "call-prospect"
	NextActionEmailProspect   NextActionType = "email-prospect"
	NextActionScheduleMeeting NextActionType = "schedule-meeting"
	NextActionSendSamples     NextActionType = "send-samples"
	NextActionSelfReminder    NextActionType = "self-reminder"
	NextActionCustomTask      NextActionType = "custom-task"
)

// NextActionStatus is the lifecycle state of the next-action slot.
type NextActionStatus string

const (
	NextActionPending     NextActionStatus = "PENDING"
	NextActionRescheduled NextActionStatus = "RESCHEDULED"
	NextActionCompleted   NextActionStatus = "COMPLETED"
	NextActionCancelled   NextActionStatus = "CANCELLED"
)

// Activity represents a logged sales activity against a prospect.
// The next_action_* fields form a standing follow-up slot managed by the
// next-action state machine; they are cleared only by an explicit removal,
// never by the reminder dispatch job.
type Activity struct {
	ID                     string           `bson:"_id,omitempty" json:"id"`
	ActivityType           string           `bson:"activity_type" json:"activityType"`
	Subject                string           `bson:"subject" json:"subject"`
	Outcome                string           `bson:"outcome,omitempty" json:"outcome,omitempty"`
	Notes                  string           `bson:"notes,omitempty" json:"notes,omitempty"`
	ProspectID             string           `bson:"prospect_id,omitempty" json:"prospectId,omitempty"`
	Owner                  string           `bson:"owner" json:"owner"`
	SampleProducts         []string         `bson:"sample_products,omitempty" json:"sampleProducts,omitempty"`
	NextActionType         NextActionType   `bson:"next_action_type,omitempty" json:"nextActionType,omitempty"`
	NextActionDetails      string           `bson:"next_action_details,omitempty" json:"nextActionDetails,omitempty"`
	NextActionDate         *time.Time       `bson:"next_action_date,omitempty" json:"nextActionDate,omitempty"`
	NextActionStatus       NextActionStatus `bson:"next_action_status,omitempty" json:"nextActionStatus,omitempty"`
	NextActionReminderSent bool             `bson:"next_action_reminder_sent" json:"nextActionReminderSent"`
	NextActionCompletedAt  *time.Time       `bson:"next_action_completed_at,omitempty" json:"nextActionCompletedAt,omitempty"`
	Region                 string           `bson:"region,omitempty" json:"region,omitempty"`
	Team                   string           `bson:"team,omitempty" json:"team,omitempty"`
	CreatedBy              string           `bson:"created_by" json:"createdBy"`
	CreatedAt              time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time        `bson:"updated_at" json:"updatedAt"`
	DeletedAt              *time.Time       `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
}

// HasNextAction reports whether the activity carries a next action with
// actual content, as opposed to a stale empty slot.
func (a *Activity) HasNextAction() bool {
	return a.NextActionType != "" || a.NextActionDetails != ""
}
