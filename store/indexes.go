package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique id index on every collection, the unique
// email index on users, and the sort indexes used by the listings.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}
	desc := func(key string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: -1}}}
	}

	wanted := map[string][]mongo.IndexModel{
		UsersCollection:          {unique("id"), unique("email"), desc("created_at")},
		ReportsCollection:        {unique("id"), desc("created_at"), {Keys: bson.D{{Key: "reporter_id", Value: 1}}}},
		NotificationsCollection:  {unique("id"), {Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		RegistrationsCollection:  {unique("id"), {Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}}},
		PasswordResetsCollection: {unique("id"), desc("request_date")},
	}

	for name, models := range wanted {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
