package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findByID[T any](ctx context.Context, col *mongo.Collection, id string) (T, error) {
	var out T
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	return out, mapErr(err)
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc any) error {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type IngredientStore struct {
	col *mongo.Collection
}

func (s *IngredientStore) Find(ctx context.Context) ([]model.Ingredient, error) {
	return findAll[model.Ingredient](ctx, s.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *IngredientStore) FindByID(ctx context.Context, id string) (model.Ingredient, error) {
	return findByID[model.Ingredient](ctx, s.col, id)
}

func (s *IngredientStore) Create(ctx context.Context, ing model.Ingredient) error {
	_, err := s.col.InsertOne(ctx, ing)
	return mapErr(err)
}

func (s *IngredientStore) Update(ctx context.Context, ing model.Ingredient) error {
	return replaceByID(ctx, s.col, ing.ID, ing)
}

func (s *IngredientStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}

type RecipeStore struct {
	col *mongo.Collection
}

func (s *RecipeStore) Find(ctx context.Context, f store.RecipeFilter) ([]model.Recipe, error) {
	filter := bson.M{}
	if f.Available != nil {
		filter["is_available"] = *f.Available
	}
	return findAll[model.Recipe](ctx, s.col, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *RecipeStore) FindByID(ctx context.Context, id string) (model.Recipe, error) {
	return findByID[model.Recipe](ctx, s.col, id)
}

func (s *RecipeStore) Create(ctx context.Context, r model.Recipe) error {
	_, err := s.col.InsertOne(ctx, r)
	return mapErr(err)
}

func (s *RecipeStore) Update(ctx context.Context, r model.Recipe) error {
	return replaceByID(ctx, s.col, r.ID, r)
}

func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}

func (s *RecipeStore) SetAvailable(ctx context.Context, availableIDs []string) error {
	if availableIDs == nil {
		availableIDs = []string{}
	}
	_, err := s.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": availableIDs}},
		bson.M{"$set": bson.M{"is_available": true}})
	if err != nil {
		return fmt.Errorf("mark available: %w", err)
	}
	_, err = s.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$nin": availableIDs}},
		bson.M{"$set": bson.M{"is_available": false}})
	if err != nil {
		return fmt.Errorf("mark unavailable: %w", err)
	}
	return nil
}

type SlotStore struct {
	col *mongo.Collection
}

func (s *SlotStore) Find(ctx context.Context) ([]model.DispenserSlot, error) {
	return findAll[model.DispenserSlot](ctx, s.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "slot", Value: 1}}))
}

func (s *SlotStore) FindByID(ctx context.Context, id string) (model.DispenserSlot, error) {
	return findByID[model.DispenserSlot](ctx, s.col, id)
}

func (s *SlotStore) Create(ctx context.Context, slot model.DispenserSlot) error {
	_, err := s.col.InsertOne(ctx, slot)
	return mapErr(err)
}

func (s *SlotStore) Update(ctx context.Context, slot model.DispenserSlot) error {
	return replaceByID(ctx, s.col, slot.ID, slot)
}

func (s *SlotStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}

// settingID keys the settings singleton document.
const settingID = "global"

type settingDoc struct {
	ID            string `bson:"_id"`
	model.Setting `bson:",inline"`
}

type SettingStore struct {
	col *mongo.Collection
}

func (s *SettingStore) Get(ctx context.Context) (model.Setting, error) {
	var doc settingDoc
	err := s.col.FindOne(ctx, bson.M{"_id": settingID}).Decode(&doc)
	if err != nil {
		return model.Setting{}, mapErr(err)
	}
	return doc.Setting, nil
}

func (s *SettingStore) Put(ctx context.Context, setting model.Setting) error {
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": settingID},
		settingDoc{ID: settingID, Setting: setting},
		options.Replace().SetUpsert(true))
	return mapErr(err)
}

type OrderStore struct {
	col *mongo.Collection
}

// Find returns all orders sorted by creation time ascending, matching the
// in-memory store.
func (s *OrderStore) Find(ctx context.Context) ([]model.Order, error) {
	return findAll[model.Order](ctx, s.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (model.Order, error) {
	return findByID[model.Order](ctx, s.col, id)
}

// Create relies on the partial unique index over status=CREATED: when an
// order in that status already exists the insert fails with a duplicate key
// error, surfaced as ErrConflict.
func (s *OrderStore) Create(ctx context.Context, o model.Order) error {
	_, err := s.col.InsertOne(ctx, o)
	return mapErr(err)
}

func (s *OrderStore) TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return false, mapErr(err)
	}
	if res.MatchedCount == 0 {
		// Distinguish "wrong status" from "no such order".
		n, err := s.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, store.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

func (s *OrderStore) Save(ctx context.Context, o model.Order) error {
	return replaceByID(ctx, s.col, o.ID, o)
}

type FileStore struct {
	col *mongo.Collection
}

func (s *FileStore) Find(ctx context.Context) ([]model.File, error) {
	return findAll[model.File](ctx, s.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *FileStore) FindByID(ctx context.Context, id string) (model.File, error) {
	return findByID[model.File](ctx, s.col, id)
}

func (s *FileStore) Create(ctx context.Context, f model.File) error {
	_, err := s.col.InsertOne(ctx, f)
	return mapErr(err)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}
