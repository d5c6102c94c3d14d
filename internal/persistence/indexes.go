package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the collection indexes the lifecycle flows rely on:
// unique email lookup, token equality lookups, and purchaser listing.
func EnsureIndexes(ctx context.Context, db *Mongo, logger *zap.Logger) error {
	users := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token_status", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "token_expiration_closure", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	tickets := db.Collection("tickets")
	ticketIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "purchaser", Value: 1}},
		},
	}
	if _, err := tickets.Indexes().CreateMany(ctx, ticketIndexes); err != nil {
		return err
	}

	logger.Info("indexes ensured", zap.Int("users", len(userIndexes)), zap.Int("tickets", len(ticketIndexes)))
	return nil
}
