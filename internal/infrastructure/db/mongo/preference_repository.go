package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

const collectionPreferences = "user_preferences"

// PreferenceRepository implements ports.PreferenceStore using MongoDB.
// Preferences are stored one document per (user, key) pair.
type PreferenceRepository struct {
	col *mongo.Collection
}

func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{col: db.Collection(collectionPreferences)}
}

type preferenceDoc struct {
	UserID string  `bson:"user_id"`
	Key    string  `bson:"key"`
	Value  float64 `bson:"value"`
}

// GetFloat reads a numeric preference. Missing documents are reported as
// domain.ErrPreferenceNotFound so callers can fall back instead of failing.
func (r *PreferenceRepository) GetFloat(ctx context.Context, userID, key string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc preferenceDoc
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrPreferenceNotFound
		}
		return 0, fmt.Errorf("find preference: %w", err)
	}
	return doc.Value, nil
}

// SetFloat upserts a numeric preference for the user.
func (r *PreferenceRepository) SetFloat(ctx context.Context, userID, key string, value float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "key": key}
	update := bson.M{"$set": bson.M{"value": value}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique (user_id, key) index.
func (r *PreferenceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := r.col.Indexes().CreateOne(ctx, index)
	return err
}
