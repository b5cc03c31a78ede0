package repositories

import (
	"testing"
	"time"

	"github.com/white/sales-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

var clearableNextActionKeys = []string{
	"next_action_type",
	"next_action_details",
	"next_action_date",
	"next_action_status",
	"next_action_completed_at",
}

func marshaledSet(t *testing.T, update bson.M) bson.M {
	t.Helper()
	raw, err := bson.Marshal(update["$set"])
	if err != nil {
		t.Fatalf("marshal $set: %v", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		t.Fatalf("unmarshal $set: %v", err)
	}
	return set
}

func TestUpdateDocumentUnsetsClearedNextActionFields(t *testing.T) {
	// The slot exactly as a removal leaves it: every next-action field zero.
	activity := &models.Activity{
		ID:           "act-1",
		ActivityType: "meeting",
		Subject:      "quarterly review",
		Owner:        "user-1",
	}

	update := activityUpdateDocument(activity)

	set := marshaledSet(t, update)
	for _, key := range clearableNextActionKeys {
		if _, ok := set[key]; ok {
			t.Fatalf("cleared field %q must not appear in $set", key)
		}
	}

	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected $unset document, got %+v", update)
	}
	for _, key := range clearableNextActionKeys {
		if _, ok := unset[key]; !ok {
			t.Fatalf("cleared field %q missing from $unset, stale stored value would survive", key)
		}
	}
}

func TestUpdateDocumentUnsetsCompletedAtOnReopen(t *testing.T) {
	// Reopening a completed action clears completed_at while the rest of the
	// slot stays populated.
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	activity := &models.Activity{
		ID:               "act-1",
		ActivityType:     "meeting",
		Subject:          "quarterly review",
		Owner:            "user-1",
		NextActionType:   models.NextActionCallProspect,
		NextActionDate:   &due,
		NextActionStatus: models.NextActionPending,
	}

	update := activityUpdateDocument(activity)

	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected $unset document, got %+v", update)
	}
	if _, ok := unset["next_action_completed_at"]; !ok {
		t.Fatalf("cleared completed_at missing from $unset")
	}
	for _, key := range []string{"next_action_type", "next_action_date", "next_action_status"} {
		if _, ok := unset[key]; ok {
			t.Fatalf("populated field %q must not be unset", key)
		}
	}
}

func TestUpdateDocumentKeepsPopulatedNextActionFields(t *testing.T) {
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	activity := &models.Activity{
		ID:                "act-1",
		ActivityType:      "meeting",
		Subject:           "quarterly review",
		Owner:             "user-1",
		NextActionType:    models.NextActionCustomTask,
		NextActionDetails: "drop off brochures",
		NextActionDate:    &due,
		NextActionStatus:  models.NextActionPending,
	}

	update := activityUpdateDocument(activity)

	set := marshaledSet(t, update)
	for _, key := range []string{"next_action_type", "next_action_details", "next_action_date", "next_action_status"} {
		if _, ok := set[key]; !ok {
			t.Fatalf("populated field %q missing from $set", key)
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		for _, key := range []string{"next_action_type", "next_action_details", "next_action_date", "next_action_status"} {
			if _, ok := unset[key]; ok {
				t.Fatalf("populated field %q must not be unset", key)
			}
		}
	}
}

func TestDueNextActionFilterRequiresType(t *testing.T) {
	start := time.Date(2025, 6, 9, 18, 30, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)

	filter := dueNextActionFilter(start, end)

	if _, ok := filter["next_action_type"]; !ok {
		t.Fatalf("candidate filter must require a next action type: %+v", filter)
	}
	if _, ok := filter["$or"]; ok {
		t.Fatalf("typeless slots must not be admitted via $or: %+v", filter)
	}
	window, ok := filter["next_action_date"].(bson.M)
	if !ok || window["$gte"] != start || window["$lte"] != end {
		t.Fatalf("unexpected window bounds: %+v", filter["next_action_date"])
	}
	if filter["next_action_reminder_sent"] != false {
		t.Fatalf("filter must exclude already-reminded records: %+v", filter)
	}
}
