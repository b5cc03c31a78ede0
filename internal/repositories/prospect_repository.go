package repositories

import (
	"context"
	"fmt"

	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProspectRepository handles prospect data access with MongoDB
type ProspectRepository struct {
	collection *mongo.Collection
}

// NewProspectRepository creates a new ProspectRepository
func NewProspectRepository(client *mongodb.Client) *ProspectRepository {
	return &ProspectRepository{
		collection: client.Collection("prospects"),
	}
}

// GetProspectByID retrieves a prospect by id (excludes soft-deleted)
func (r *ProspectRepository) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	filter := bson.M{
		"_id":        id,
		"deleted_at": nil,
	}

	var prospect models.Prospect
	err := r.collection.FindOne(ctx, filter).Decode(&prospect)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProspectNotFound
		}
		return nil, fmt.Errorf("error querying prospect: %w", err)
	}

	return &prospect, nil
}
