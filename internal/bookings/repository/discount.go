package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/pkg/config"
	"staybook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Discount, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DiscountUsageRepository interface {
	Exists(ctx context.Context, userID, code string) (bool, error)
	Create(ctx context.Context, usage *model.DiscountUsage) error
}

type mongoDiscountRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDiscountRepository(cfg *config.Config) DiscountRepository {
	return &mongoDiscountRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DiscountsCollection),
	}
}

func (r *mongoDiscountRepository) FindByCode(ctx context.Context, code string) (*model.Discount, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var discount model.Discount
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&discount)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to find discount: %w", err)
	}

	return &discount, nil
}

// DeleteExpired removes discounts whose expiry date has passed. Discounts
// without an expiry date are kept.
func (r *mongoDiscountRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"expire_date": bson.M{"$lt": now, "$gt": time.Time{}}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired discounts: %w", err)
	}
	return result.DeletedCount, nil
}

type mongoDiscountUsageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDiscountUsageRepository(cfg *config.Config) DiscountUsageRepository {
	return &mongoDiscountUsageRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DiscountUsagesCollection),
	}
}

func (r *mongoDiscountUsageRepository) Exists(ctx context.Context, userID, code string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "discount_code": code})
	if err != nil {
		return false, fmt.Errorf("failed to check discount usage: %w", err)
	}
	return count > 0, nil
}

// Create records a redemption. The unique (user_id, discount_code) index
// turns a concurrent second redemption into ErrDuplicateUsage.
func (r *mongoDiscountUsageRepository) Create(ctx context.Context, usage *model.DiscountUsage) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if usage.UsedAt.IsZero() {
		usage.UsedAt = now()
	}

	if _, err := r.collection.InsertOne(ctx, usage); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrDuplicateUsage
		}
		return fmt.Errorf("failed to record discount usage: %w", err)
	}
	return nil
}
