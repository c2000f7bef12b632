package repository

import (
	"context"
	"errors"
	"fmt"
	"staybook/pkg/config"
	"staybook/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TempLockRepository stores advisory holds. Several holds may exist for the
// same room; nothing here enforces exclusivity.
type TempLockRepository interface {
	Create(ctx context.Context, lock *model.TempLock) error
	FindActive(ctx context.Context, roomID string, now time.Time) (*model.TempLock, error)
	Delete(ctx context.Context, lock *model.TempLock) error
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
}

type mongoTempLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// NewMongoTempLockRepository relies on the TTL index on expires_at created
// by the migration to drop expired holds.
func NewMongoTempLockRepository(cfg *config.Config) TempLockRepository {
	return &mongoTempLockRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(TempLocksCollection),
	}
}

func (r *mongoTempLockRepository) Create(ctx context.Context, lock *model.TempLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if lock.ID == "" {
		lock.ID = uuid.NewString()
	}
	if lock.LockedAt.IsZero() {
		lock.LockedAt = now()
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return fmt.Errorf("failed to create temp lock: %w", err)
	}
	return nil
}

// FindActive returns the longest-lived unexpired hold on roomID, or nil.
// Expired documents may linger until the TTL monitor runs, so expiry is
// checked here as well.
func (r *mongoTempLockRepository) FindActive(ctx context.Context, roomID string, now time.Time) (*model.TempLock, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}})

	var lock model.TempLock
	err := r.collection.FindOne(ctx, filter, opts).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find temp lock: %w", err)
	}

	return &lock, nil
}

func (r *mongoTempLockRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete temp locks: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoTempLockRepository) Delete(ctx context.Context, lock *model.TempLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID}); err != nil {
		return fmt.Errorf("failed to delete temp lock: %w", err)
	}
	return nil
}
