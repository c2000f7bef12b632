package repository

import (
	"context"
	"fmt"
	"slices"
	"staybook/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoomGuardRepository keeps one counter document per room. Bumping the
// counters inside a booking transaction makes two transactions that touch
// the same room conflict on write, so only one of them can commit against a
// given availability snapshot; the loser is retried by the driver and sees
// the winner's booking.
type RoomGuardRepository interface {
	Bump(ctx context.Context, roomIDs []string) error
}

type mongoRoomGuardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomGuardRepository(cfg *config.Config) RoomGuardRepository {
	return &mongoRoomGuardRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(RoomGuardsCollection),
	}
}

func (r *mongoRoomGuardRepository) Bump(ctx context.Context, roomIDs []string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ids := slices.Clone(roomIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	opts := options.Update().SetUpsert(true)
	for _, id := range ids {
		update := bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": now()},
		}
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, opts); err != nil {
			return fmt.Errorf("failed to bump room guard %s: %w", id, err)
		}
	}

	return nil
}
