package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/white/sales-tracker/internal/models"
)

// ReminderActivityStore is the slice of the activity repository the dispatch
// job needs. ClaimNextActionReminder must be a single conditional write that
// flips the reminder flag only if it is still false, so concurrent job
// instances never double-send.
type ReminderActivityStore interface {
	FindDueNextActions(ctx context.Context, start, end time.Time) ([]*models.Activity, error)
	ClaimNextActionReminder(ctx context.Context, activityID string) (bool, error)
	ReleaseNextActionReminder(ctx context.Context, activityID string) error
}

type ReminderUserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type ReminderProspectStore interface {
	GetProspectByID(ctx context.Context, id string) (*models.Prospect, error)
}

// ReminderNotifier performs the external notification side effect.
type ReminderNotifier interface {
	SendNextActionReminder(ctx context.Context, user *models.User, prospect *models.Prospect, activity *models.Activity) error
}

// ReminderEventPublisher mirrors successful dispatches onto the event bus.
// Best-effort: publish failures are logged and do not affect the summary.
type ReminderEventPublisher interface {
	PublishReminderSent(activity *models.Activity, user *models.User)
}

// errReminderAlreadyClaimed marks a candidate a concurrent dispatch
// instance claimed first. The other instance reports the outcome.
var errReminderAlreadyClaimed = errors.New("reminder already claimed")

// DispatchError describes one skipped or failed candidate, with enough
// detail for support-desk triage.
type DispatchError struct {
	ActivityID string `json:"activityId"`
	Owner      string `json:"owner,omitempty"`
	Reason     string `json:"reason"`
}

// DispatchSummary is the result of one dispatch run.
type DispatchSummary struct {
	Message      string          `json:"message"`
	Sent         int             `json:"sent"`
	Errors       int             `json:"errors"`
	ErrorDetails []DispatchError `json:"errorDetails"`
}

// ReminderService selects every next action due tomorrow in the business
// timezone and notifies the owning user. Safe to re-invoke at any time:
// each record is claimed and committed independently, so a crash partway
// through a batch never re-notifies already-processed records.
type ReminderService struct {
	activities    ReminderActivityStore
	users         ReminderUserStore
	prospects     ReminderProspectStore
	notifier      ReminderNotifier
	events        ReminderEventPublisher
	calendar      *BusinessCalendar
	notifyTimeout time.Duration
	log           *logrus.Entry
}

// NewReminderService creates the dispatch job. events may be nil when no
// broker is configured.
func NewReminderService(
	activities ReminderActivityStore,
	users ReminderUserStore,
	prospects ReminderProspectStore,
	notifier ReminderNotifier,
	events ReminderEventPublisher,
	calendar *BusinessCalendar,
	notifyTimeout time.Duration,
) *ReminderService {
	if notifyTimeout <= 0 {
		notifyTimeout = 30 * time.Second
	}
	return &ReminderService{
		activities:    activities,
		users:         users,
		prospects:     prospects,
		notifier:      notifier,
		events:        events,
		calendar:      calendar,
		notifyTimeout: notifyTimeout,
		log:           logrus.WithField("component", "reminder_dispatch"),
	}
}

// Run executes one dispatch pass for the business day after now. A single
// candidate's failure never aborts the batch; failed candidates keep
// reminder_sent=false and stay eligible while their window remains open.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*DispatchSummary, error) {
	windowStart, windowEnd := s.calendar.TomorrowWindow(now)

	candidates, err := s.activities.FindDueNextActions(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("selecting due next actions: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"window_start": windowStart,
		"window_end":   windowEnd,
		"candidates":   len(candidates),
	}).Info("Reminder dispatch run started")

	summary := &DispatchSummary{ErrorDetails: []DispatchError{}}
	for _, activity := range candidates {
		if err := s.dispatchOne(ctx, activity); err != nil {
			if errors.Is(err, errReminderAlreadyClaimed) {
				// Another dispatch instance owns this record; it belongs in
				// neither the sent nor the error count.
				s.log.WithField("activity_id", activity.ID).Debug("Reminder already claimed, skipping")
				continue
			}
			summary.Errors++
			summary.ErrorDetails = append(summary.ErrorDetails, DispatchError{
				ActivityID: activity.ID,
				Owner:      activity.Owner,
				Reason:     err.Error(),
			})
			s.log.WithError(err).WithField("activity_id", activity.ID).Warn("Reminder candidate skipped")
			continue
		}
		summary.Sent++
	}

	summary.Message = fmt.Sprintf("Reminder dispatch complete: %d sent, %d errors", summary.Sent, summary.Errors)
	s.log.WithFields(logrus.Fields{"sent": summary.Sent, "errors": summary.Errors}).Info("Reminder dispatch run finished")
	return summary, nil
}

// dispatchOne handles a single candidate: integrity checks first, then an
// atomic claim of the reminder flag, then the notification. The claim is
// released if the send fails so the record is retried on the next run.
func (s *ReminderService) dispatchOne(ctx context.Context, activity *models.Activity) error {
	user, err := s.users.GetUserByID(ctx, activity.Owner)
	if err != nil {
		return fmt.Errorf("owner %q not found: %w", activity.Owner, err)
	}
	if user.Email == "" {
		return fmt.Errorf("owner %q has no reachable contact channel", activity.Owner)
	}

	var prospect *models.Prospect
	if activity.ProspectID != "" {
		prospect, err = s.prospects.GetProspectByID(ctx, activity.ProspectID)
		if err != nil {
			return fmt.Errorf("prospect %q not found: %w", activity.ProspectID, err)
		}
	}

	claimed, err := s.activities.ClaimNextActionReminder(ctx, activity.ID)
	if err != nil {
		return fmt.Errorf("claiming reminder: %w", err)
	}
	if !claimed {
		return errReminderAlreadyClaimed
	}

	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	err = s.notifier.SendNextActionReminder(notifyCtx, user, prospect, activity)
	cancel()
	if err != nil {
		if releaseErr := s.activities.ReleaseNextActionReminder(ctx, activity.ID); releaseErr != nil {
			s.log.WithError(releaseErr).WithField("activity_id", activity.ID).Error("Failed to release reminder claim")
		}
		return fmt.Errorf("sending reminder: %w", err)
	}

	if s.events != nil {
		s.events.PublishReminderSent(activity, user)
	}
	return nil
}
