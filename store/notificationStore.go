package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicreporter-be/models"
)

// NotificationFilter selects the notices visible to one user: their directed
// notices plus every broadcast.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Type       models.NotificationType
}

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(NotificationsCollection)}
}

func (s *NotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	return insertOne(ctx, s.coll, n)
}

func (s *NotificationStore) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	return findOne[models.Notification](ctx, s.coll, byID(id))
}

func (s *NotificationStore) List(ctx context.Context, f NotificationFilter, page Page) ([]models.Notification, error) {
	return findMany[models.Notification](ctx, s.coll, notificationQuery(f), page.findOptions("created_at"))
}

func (s *NotificationStore) Count(ctx context.Context, f NotificationFilter) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, notificationQuery(f))
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

// ListAll returns every notification regardless of target.
func (s *NotificationStore) ListAll(ctx context.Context, page Page) ([]models.Notification, error) {
	return findMany[models.Notification](ctx, s.coll, bson.M{}, page.findOptions("created_at"))
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string, at time.Time) error {
	return updateMatched(ctx, s.coll, byID(id), bson.M{"$set": bson.M{"is_read": true, "read_at": at}})
}

// MarkAllRead marks every unread notice visible to userID and returns how
// many changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	filter := notificationQuery(NotificationFilter{UserID: userID, UnreadOnly: true})
	res, err := s.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true, "read_at": at}})
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoEffect
	}
	return nil
}

func notificationQuery(f NotificationFilter) bson.M {
	filter := bson.M{
		"$or": []bson.M{
			{"user_id": f.UserID},
			{"user_id": nil},
		},
	}
	if f.UnreadOnly {
		filter["is_read"] = false
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	return filter
}
