package audit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/pkg/uuid"
)

// Store persists audit log entries. Entries are append-only: no Store
// implementation may update or merge rows.
type Store interface {
	InsertAuditLog(ctx context.Context, entry *models.AuditLogEntry) error
}

// Publisher mirrors stored entries onto the event bus.
type Publisher interface {
	PublishJSON(topic string, data interface{}) error
}

// Actor is the identity performing an audited action, captured by value.
// Zero value means a system-triggered action with no actor.
type Actor struct {
	ID   string
	Name string
	Role string
}

// RequestInfo is best-effort request provenance, passed explicitly by the
// caller rather than pulled from ambient state.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

const defaultQueueSize = 256

// Recorder appends audit log entries through a bounded queue and a single
// background worker. Record never blocks the mutation path and never
// surfaces an error: under load entries are dropped with a log line, and
// storage failures are logged out-of-band. Audit rows are therefore
// eventually consistent with the primary write.
type Recorder struct {
	store     Store
	publisher Publisher
	topic     string
	queue     chan *models.AuditLogEntry
	done      chan struct{}
	closeOnce sync.Once
	log       *logrus.Entry
}

// NewRecorder starts the background worker. publisher may be nil when no
// broker is configured; entries are then persisted only.
func NewRecorder(store Store, publisher Publisher, topic string, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	r := &Recorder{
		store:     store,
		publisher: publisher,
		topic:     topic,
		queue:     make(chan *models.AuditLogEntry, queueSize),
		done:      make(chan struct{}),
		log:       logrus.WithField("component", "audit_recorder"),
	}
	go r.worker()
	return r
}

// Record enqueues one entry, filling in id and timestamp when absent.
// Fire-and-forget: the caller gets no error and is never blocked.
func (r *Recorder) Record(entry *models.AuditLogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.MustNewUUID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	select {
	case r.queue <- entry:
	default:
		r.log.WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).Warn("Audit queue full, entry dropped")
	}
}

// RecordChange records a mutation with a field-level diff in the details
// payload.
func (r *Recorder) RecordChange(action models.AuditAction, actor Actor, entityType, entityID string, changes map[string]models.FieldChange, req RequestInfo) {
	details := map[string]interface{}{}
	if len(changes) > 0 {
		details["changes"] = changes
	}
	r.Record(&models.AuditLogEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserRole:   actor.Role,
		Details:    details,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	})
}

// RecordSnapshot records a create or delete with a full entity snapshot.
func (r *Recorder) RecordSnapshot(action models.AuditAction, actor Actor, entityType, entityID string, snapshot interface{}, req RequestInfo) {
	r.Record(&models.AuditLogEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserRole:   actor.Role,
		Details:    map[string]interface{}{"snapshot": snapshot},
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	})
}

// RecordFailure leaves a trace of a failed mutation so operational failures
// are discoverable through the same log.
func (r *Recorder) RecordFailure(actor Actor, entityType, entityID, errMsg string, req RequestInfo) {
	r.Record(&models.AuditLogEntry{
		Action:     models.AuditActionFailed,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserRole:   actor.Role,
		Details:    map[string]interface{}{"error": errMsg},
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	})
}

// Close stops accepting entries and drains the queue.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	<-r.done
}

func (r *Recorder) worker() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := r.store.InsertAuditLog(ctx, entry)
		cancel()
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"action":      entry.Action,
				"entity_type": entry.EntityType,
				"entity_id":   entry.EntityID,
			}).Error("Failed to persist audit log entry")
			continue
		}
		if r.publisher != nil && r.topic != "" {
			if err := r.publisher.PublishJSON(r.topic, entry); err != nil {
				r.log.WithError(err).Warn("Failed to publish audit event")
			}
		}
	}
}
