package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/server/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(cartsCollection)}
}

func (m *MongoRepository) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// addItemAttempts bounds the retries when a concurrent first add races the upsert.
const addItemAttempts = 3

// AddItem adds quantity of productID to the user's cart, creating the cart when
// needed. An existing line is incremented in place, capped at maxQuantity, and keeps
// its position and added_at. Both paths are single-document updates, so concurrent
// adds never lose an increment.
func (m *MongoRepository) AddItem(ctx context.Context, userID, productID string, quantity, maxQuantity int) error {
	for attempt := 1; ; attempt++ {
		merged, err := m.mergeItem(ctx, userID, productID, quantity, maxQuantity)
		if err != nil {
			return fmt.Errorf("failed to update existing item: %w", err)
		}
		if merged {
			return nil
		}

		err = m.pushItem(ctx, userID, productID, min(quantity, maxQuantity))
		if err == nil {
			return nil
		}
		// another writer created the cart or the line first; merge into it instead
		if !mongo.IsDuplicateKeyError(err) || attempt == addItemAttempts {
			return fmt.Errorf("failed to add new item: %w", err)
		}
	}
}

func (m *MongoRepository) mergeItem(ctx context.Context, userID, productID string, quantity, maxQuantity int) (bool, error) {
	filter := bson.M{"user_id": userID, "items.product_id": productID}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"items": bson.M{"$map": bson.M{
				"input": "$items",
				"as":    "it",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$it.product_id", bson.M{"$literal": productID}}},
					bson.M{"$mergeObjects": bson.A{
						"$$it",
						bson.M{"quantity": bson.M{"$min": bson.A{
							bson.M{"$add": bson.A{"$$it.quantity", quantity}},
							maxQuantity,
						}}},
					}},
					"$$it",
				}},
			}},
			"updated_at": time.Now().UTC(),
		}}},
	}
	res, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// pushItem appends a new line. The filter excludes carts that already hold the
// product, so a racing add for the same product ends in a duplicate key on user_id
// rather than a second line.
func (m *MongoRepository) pushItem(ctx context.Context, userID, productID string, quantity int) error {
	now := time.Now().UTC()
	line := model.CartLine{ProductID: productID, Quantity: quantity, AddedAt: now}

	filter := bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": productID}}
	update := bson.M{
		"$push":        bson.M{"items": line},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *MongoRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	filter := bson.M{"user_id": userID, "items.product_id": productID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"product_id": productID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// DeleteCart removes the user's cart if it was last changed before the given time.
// A cart touched at or after it is kept and reported as ErrCartNotFound.
func (m *MongoRepository) DeleteCart(ctx context.Context, userID string, before time.Time) error {
	filter := bson.M{"user_id": userID, "updated_at": bson.M{"$lt": before.UTC()}}
	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60 * 24 * 60 * 60), // abandoned carts go after 60 days
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
