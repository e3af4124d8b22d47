package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

const collectionEntries = "time_entries"

type TimesheetRepository struct {
	col *mongo.Collection
}

func NewTimesheetRepository(db *mongo.Database) *TimesheetRepository {
	return &TimesheetRepository{col: db.Collection(collectionEntries)}
}

// Create inserts a new time entry document.
func (r *TimesheetRepository) Create(ctx context.Context, e *domain.TimeEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, e)
	if err != nil {
		return err
	}
	return nil
}

// FindByID retrieves an entry by id. When userID is non-empty, an additional
// filter by owner is applied so non-admin callers cannot read foreign entries.
func (r *TimesheetRepository) FindByID(ctx context.Context, id string, userID string) (*domain.TimeEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if userID != "" {
		filter["user_id"] = userID
	}

	var e domain.TimeEntry
	err := r.col.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindRunning returns the user's currently running entry, identified by a
// missing end timestamp.
func (r *TimesheetRepository) FindRunning(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"user_id": userID,
		"end":     bson.M{"$exists": false},
	}

	var e domain.TimeEntry
	err := r.col.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Update replaces the stored document for the entry.
func (r *TimesheetRepository) Update(ctx context.Context, e *domain.TimeEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// Delete removes an entry by id.
func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// List returns a page of entries matching the filter, newest first, together
// with the total number of matching documents.
func (r *TimesheetRepository) List(ctx context.Context, filter ports.ListEntriesFilter) ([]*domain.TimeEntry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := listFilterToQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "begin", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var entries []*domain.TimeEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListStopped returns every finished entry of a user, oldest first. Used by
// rate recalculation after rule changes.
func (r *TimesheetRepository) ListStopped(ctx context.Context, userID string) ([]*domain.TimeEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"user_id": userID,
		"end":     bson.M{"$exists": true},
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "begin", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []*domain.TimeEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureIndexes creates necessary indexes on the time_entries collection.
func (r *TimesheetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "begin", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "end", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func listFilterToQuery(filter ports.ListEntriesFilter) bson.M {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.ProjectID != "" {
		query["project_id"] = filter.ProjectID
	}
	if filter.ActivityID != "" {
		query["activity_id"] = filter.ActivityID
	}
	if filter.Billable != nil {
		query["billable"] = *filter.Billable
	}
	if filter.Running != nil {
		query["end"] = bson.M{"$exists": !*filter.Running}
	}

	begin := bson.M{}
	if !filter.DateFrom.IsZero() {
		begin["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		begin["$lte"] = filter.DateTo
	}
	if len(begin) > 0 {
		query["begin"] = begin
	}
	return query
}
