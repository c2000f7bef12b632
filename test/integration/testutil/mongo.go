//go:build integration

package testutil

import (
	"context"
	"staybook/internal/bookings/repository"
	migration "staybook/internal/migrations/mongo"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "staybook_test"
	ConnectionTimeout   = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase empties every collection and re-applies the migrations, so
// validators and indexes match what the service expects.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name := range migration.Collections() {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
	if err := migration.RunMigration(ctx, m.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

func (m *MongoHelper) InsertRoom(t *testing.T, room model.Room) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	doc := bson.M{
		"_id":          id,
		"property_id":  room.PropertyID,
		"name":         room.Name,
		"price":        room.Price,
		"total_room":   room.TotalRoom,
		"is_available": room.IsAvailable,
		"created_at":   time.Now().UTC(),
	}
	if _, err := m.Database.Collection(repository.RoomsCollection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to insert room: %v", err)
	}
	return id.Hex()
}

func (m *MongoHelper) InsertDiscount(t *testing.T, d model.Discount) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc := bson.M{
		"code":        d.Code,
		"percentage":  d.Percentage,
		"expire_date": d.ExpireDate,
		"is_active":   d.IsActive,
		"created_at":  time.Now().UTC(),
	}
	if d.PropertyID != "" {
		doc["property_id"] = d.PropertyID
	}
	if _, err := m.Database.Collection(repository.DiscountsCollection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to insert discount: %v", err)
	}
}

// ConfirmationToken reads the token that would have gone out by email.
func (m *MongoHelper) ConfirmationToken(t *testing.T, bookingID string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		t.Fatalf("invalid booking id %q: %v", bookingID, err)
	}

	var doc struct {
		Token string `bson:"confirmation_token"`
	}
	err = m.Database.Collection(repository.BookingsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		t.Fatalf("failed to load booking %s: %v", bookingID, err)
	}
	return doc.Token
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}
