package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

const collectionRateRules = "rate_rules"

// RateRuleRepository implements ports.RateSource using MongoDB. A rule is a
// candidate for an entry when each of its scope fields is either unset or
// matches the entry's value.
type RateRuleRepository struct {
	col *mongo.Collection
}

func NewRateRuleRepository(db *mongo.Database) *RateRuleRepository {
	return &RateRuleRepository{col: db.Collection(collectionRateRules)}
}

// FindCandidateRates loads every rule applicable to the entry's scope, in
// insertion order. Scoring and tie-breaking stay with the rate resolver.
func (r *RateRuleRepository) FindCandidateRates(ctx context.Context, entry *domain.TimeEntry) ([]domain.RateRule, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"$and": []bson.M{
			scopeClause("customer_id", entry.CustomerID),
			scopeClause("project_id", entry.ProjectID),
			scopeClause("activity_id", entry.ActivityID),
			scopeClause("user_id", entry.UserID),
		},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rules []domain.RateRule
	if err := cur.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// EnsureIndexes creates necessary indexes on the rate_rules collection.
func (r *RateRuleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "activity_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// scopeClause matches documents whose field is unset, empty, or equal to value.
func scopeClause(field, value string) bson.M {
	return bson.M{
		"$or": []bson.M{
			{field: bson.M{"$exists": false}},
			{field: ""},
			{field: value},
		},
	}
}
