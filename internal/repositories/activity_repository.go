package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository handles activity data access with MongoDB
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(client *mongodb.Client) *ActivityRepository {
	return &ActivityRepository{
		collection: client.Collection("activities"),
	}
}

// CreateActivity creates a new activity
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		return fmt.Errorf("error creating activity: %w", err)
	}

	if id, ok := result.InsertedID.(string); ok {
		activity.ID = id
	}

	return nil
}

// GetActivityByID retrieves an activity by id (excludes soft-deleted)
func (r *ActivityRepository) GetActivityByID(ctx context.Context, id string) (*models.Activity, error) {
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}

	var activity models.Activity
	err := r.collection.FindOne(ctx, filter).Decode(&activity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("error querying activity: %w", err)
	}

	return &activity, nil
}

// activityUpdateDocument builds the UpdateOne document for an activity.
// The struct's bson tags omit zero values, so a field the caller cleared
// would silently survive a plain $set; every clearable field that is now
// zero goes into $unset so the stored value is actually removed.
func activityUpdateDocument(activity *models.Activity) bson.M {
	unset := bson.M{}
	if activity.Outcome == "" {
		unset["outcome"] = ""
	}
	if activity.Notes == "" {
		unset["notes"] = ""
	}
	if len(activity.SampleProducts) == 0 {
		unset["sample_products"] = ""
	}
	if activity.NextActionType == "" {
		unset["next_action_type"] = ""
	}
	if activity.NextActionDetails == "" {
		unset["next_action_details"] = ""
	}
	if activity.NextActionDate == nil {
		unset["next_action_date"] = ""
	}
	if activity.NextActionStatus == "" {
		unset["next_action_status"] = ""
	}
	if activity.NextActionCompletedAt == nil {
		unset["next_action_completed_at"] = ""
	}

	update := bson.M{"$set": activity}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// UpdateActivity replaces the stored fields of an activity
func (r *ActivityRepository) UpdateActivity(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now()

	filter := bson.M{"_id": activity.ID}
	update := activityUpdateDocument(activity)

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating activity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrActivityNotFound
	}

	return nil
}

// GetActivitiesByOwner retrieves activities for a specific owner (excludes soft-deleted)
func (r *ActivityRepository) GetActivitiesByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Activity, error) {
	filter := bson.M{
		"owner":      ownerID,
		"deleted_at": nil,
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing activities by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("error decoding activities: %w", err)
	}

	return activities, nil
}

// dueNextActionFilter matches reminder candidates: a typed next action due
// inside [start, end], not yet reminded, on a live activity.
func dueNextActionFilter(start, end time.Time) bson.M {
	return bson.M{
		"next_action_date": bson.M{
			"$gte": start,
			"$lte": end,
		},
		"next_action_reminder_sent": false,
		"deleted_at":                nil,
		"next_action_type":          bson.M{"$exists": true, "$nin": []interface{}{"", nil}},
	}
}

// FindDueNextActions selects reminder candidates for the given window.
// Soft-deleted activities and typeless slots are excluded.
func (r *ActivityRepository) FindDueNextActions(ctx context.Context, start, end time.Time) ([]*models.Activity, error) {
	filter := dueNextActionFilter(start, end)

	opts := options.Find().SetSort(bson.D{{Key: "next_action_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error selecting due next actions: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("error decoding due next actions: %w", err)
	}

	return activities, nil
}

// ClaimNextActionReminder atomically flips next_action_reminder_sent from
// false to true for one activity. Returns false when the flag was already
// set, which means another dispatch instance claimed the record first.
func (r *ActivityRepository) ClaimNextActionReminder(ctx context.Context, activityID string) (bool, error) {
	filter := bson.M{
		"_id":                       activityID,
		"next_action_reminder_sent": false,
	}
	update := bson.M{"$set": bson.M{
		"next_action_reminder_sent": true,
		"updated_at":                time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error claiming reminder: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// ReleaseNextActionReminder puts a claimed record back into the candidate
// set after a failed send.
func (r *ActivityRepository) ReleaseNextActionReminder(ctx context.Context, activityID string) error {
	update := bson.M{"$set": bson.M{
		"next_action_reminder_sent": false,
		"updated_at":                time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": activityID}, update)
	if err != nil {
		return fmt.Errorf("error releasing reminder claim: %w", err)
	}

	return nil
}
