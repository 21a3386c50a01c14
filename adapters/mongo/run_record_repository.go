package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const (
	runRecordCollection = "run_records"
	runRecordRetention  = 30 * 24 * time.Hour
	maxRecentLimit      = 500
)

// RunRecordRepository implements RunRecorder using MongoDB
type RunRecordRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.RunRecorder = (*RunRecordRepository)(nil)

// NewRunRecordRepository creates a new MongoDB run record repository
func NewRunRecordRepository(db *mongo.Database, logger *zap.Logger) *RunRecordRepository {
	return &RunRecordRepository{
		collection: db.Collection(runRecordCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the lookup index and the retention TTL index on started_at
func (r *RunRecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ttlIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "started_at", Value: -1}},
		Options: options.Index().SetExpireAfterSeconds(int32(runRecordRetention.Seconds())),
	}

	stateIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "state", Value: 1},
			{Key: "failed_stage", Value: 1},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{ttlIndex, stateIndex}); err != nil {
		return fmt.Errorf("failed to create run record indexes: %w", err)
	}

	r.logger.Info("Run record indexes created", zap.String("collection", runRecordCollection))
	return nil
}

// Record implements repositories.RunRecorder
func (r *RunRecordRepository) Record(ctx context.Context, record *entities.RunRecord) error {
	if record == nil {
		return errors.New("run record cannot be nil")
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid run record: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// Recent implements repositories.RunRecorder
func (r *RunRecordRepository) Recent(ctx context.Context, limit int) ([]*entities.RunRecord, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*entities.RunRecord, 0, limit)
	for cursor.Next(ctx) {
		var record entities.RunRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return records, nil
}
