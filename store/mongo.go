package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"items-api/models"
)

// MongoItemStore persists items in a MongoDB collection, keyed by a UUID
// stored as _id.
type MongoItemStore struct {
	collection *mongo.Collection
}

var _ ItemStore = (*MongoItemStore)(nil)

func NewMongoItemStore(collection *mongo.Collection) *MongoItemStore {
	return &MongoItemStore{collection: collection}
}

func (s *MongoItemStore) List(ctx context.Context) ([]models.Item, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Item{}
	for cursor.Next(ctx) {
		var item models.Item
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *MongoItemStore) Get(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("find item %s: %w", id, err)
	}
	return item, nil
}

func (s *MongoItemStore) Insert(ctx context.Context, in models.CreateItemInput) (models.Item, error) {
	item := models.NewItem(uuid.New().String(), in)
	if _, err := s.collection.InsertOne(ctx, item); err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (s *MongoItemStore) Update(ctx context.Context, id string, in models.UpdateItemInput) (models.Item, error) {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.Item
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	return item, nil
}

func (s *MongoItemStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}
