// Package store persists the service's entities in MongoDB. Documents are
// keyed by their own "id" string rather than Mongo's ObjectID, and every
// document read back is validated before it leaves this package.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection          = "users"
	ReportsCollection        = "reports"
	NotificationsCollection  = "notifications"
	RegistrationsCollection  = "registration_requests"
	PasswordResetsCollection = "password_reset_requests"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrNoEffect is returned when a write matched nothing it was expected to change.
	ErrNoEffect = errors.New("write had no effect")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("duplicate key")
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is a skip/limit window over a sorted listing.
type Page struct {
	Skip  int64
	Limit int64
}

// Clamp applies defaults and bounds to a requested window.
func (p Page) Clamp(def, max int64) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	return p
}

func (p Page) findOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetSkip(p.Skip).
		SetLimit(p.Limit)
}

type document[T any] interface {
	*T
	Validate() error
}

func findOne[T any, P document[T]](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	if err := P(&doc).Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func findMany[T any, P document[T]](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	for i := range docs {
		if err := P(&docs[i]).Validate(); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

// updateMatched runs an UpdateOne that must hit exactly one document.
func updateMatched(ctx context.Context, coll *mongo.Collection, filter, update interface{}) error {
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// equalFold matches a string field case-insensitively.
func equalFold(value string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(value) + "$", "$options": "i"}
}

func byID(id string) bson.M {
	return bson.M{"id": id}
}
