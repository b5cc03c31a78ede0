package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/white/sales-tracker/internal/models"
)

// JSONPublisher is the slice of the Kafka producer the reminder event
// publisher needs.
type JSONPublisher interface {
	PublishJSON(topic string, data interface{}) error
}

// ReminderSentEvent is published for every successfully dispatched reminder.
type ReminderSentEvent struct {
	ActivityID     string     `json:"activity_id"`
	OwnerID        string     `json:"owner_id"`
	OwnerEmail     string     `json:"owner_email"`
	NextActionType string     `json:"next_action_type"`
	NextActionDate *time.Time `json:"next_action_date,omitempty"`
	SentAt         time.Time  `json:"sent_at"`
}

// KafkaReminderEvents mirrors dispatched reminders onto the event bus,
// best-effort.
type KafkaReminderEvents struct {
	producer JSONPublisher
	topic    string
	log      *logrus.Entry
}

func NewKafkaReminderEvents(producer JSONPublisher, topic string) *KafkaReminderEvents {
	return &KafkaReminderEvents{
		producer: producer,
		topic:    topic,
		log:      logrus.WithField("component", "reminder_events"),
	}
}

func (p *KafkaReminderEvents) PublishReminderSent(activity *models.Activity, user *models.User) {
	event := ReminderSentEvent{
		ActivityID:     activity.ID,
		OwnerID:        user.ID,
		OwnerEmail:     user.Email,
		NextActionType: string(activity.NextActionType),
		NextActionDate: activity.NextActionDate,
		SentAt:         time.Now().UTC(),
	}
	if err := p.producer.PublishJSON(p.topic, event); err != nil {
		p.log.WithError(err).WithField("activity_id", activity.ID).Warn("Failed to publish reminder event")
	}
}
