// Package mongo provides MongoDB-backed implementations of the core store
// interfaces. Uniqueness invariants (single CREATED order, one ingredient and
// one number per slot) are enforced with partial and plain unique indexes so
// concurrent writers race on the database, not in application code.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quentinlb/cocktaild/core/model"
)

const connectTimeout = 10 * time.Second

// Stores bundles the Mongo-backed store implementations sharing one client.
type Stores struct {
	Ingredients *IngredientStore
	Recipes     *RecipeStore
	Slots       *SlotStore
	Settings    *SettingStore
	Orders      *OrderStore
	Files       *FileStore

	client *mongo.Client
}

// Connect dials the database, pings it and prepares the indexes the store
// invariants rely on.
func Connect(ctx context.Context, uri, database string) (*Stores, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	s := &Stores{
		Ingredients: &IngredientStore{col: db.Collection("ingredients")},
		Recipes:     &RecipeStore{col: db.Collection("recipes")},
		Slots:       &SlotStore{col: db.Collection("dispenser_slots")},
		Settings:    &SettingStore{col: db.Collection("settings")},
		Orders:      &OrderStore{col: db.Collection("orders")},
		Files:       &FileStore{col: db.Collection("files")},
		client:      client,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Stores) ensureIndexes(ctx context.Context) error {
	// At most one order may sit in status CREATED at any time. A partial
	// unique index turns the concurrent-create race into a duplicate key
	// error on the second insert.
	_, err := s.Orders.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": string(model.OrderCreated)}),
	})
	if err != nil {
		return fmt.Errorf("orders index: %w", err)
	}

	_, err = s.Slots.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slot", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("slots index: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Stores) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
