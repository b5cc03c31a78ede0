package repositories

import (
	"context"
	"fmt"

	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogRepository handles audit log data access with MongoDB. Entries are
// append-only: this repository exposes no update or delete.
type AuditLogRepository struct {
	collection *mongo.Collection
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(client *mongodb.Client) *AuditLogRepository {
	return &AuditLogRepository{
		collection: client.Collection("audit_logs"),
	}
}

// InsertAuditLog appends one immutable entry.
func (r *AuditLogRepository) InsertAuditLog(ctx context.Context, entry *models.AuditLogEntry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("error inserting audit log entry: %w", err)
	}
	return nil
}

// ListByEntity returns the history of one entity, oldest first.
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*models.AuditLogEntry, error) {
	filter := bson.M{
		"entity_type": entityType,
		"entity_id":   entityID,
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing audit log entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding audit log entries: %w", err)
	}

	return entries, nil
}
