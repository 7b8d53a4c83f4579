package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicreporter-be/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	return insertOne(ctx, s.coll, u)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, byID(id))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"email": email})
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// RoleExists reports whether any account holds role.
func (s *UserStore) RoleExists(ctx context.Context, role models.Role) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"user_type": role}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// List returns users newest first, optionally restricted to one role.
func (s *UserStore) List(ctx context.Context, role models.Role, page Page) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["user_type"] = role
	}
	return findMany[models.User](ctx, s.coll, filter, page.findOptions("created_at"))
}

func (s *UserStore) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return updateMatched(ctx, s.coll, byID(id), bson.M{"$set": bson.M{"is_active": active, "updated_at": at}})
}

func (s *UserStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return updateMatched(ctx, s.coll, byID(id), bson.M{"$set": bson.M{"last_login_at": at}})
}

// SetPasswordHash replaces the stored credential of the account owning email.
func (s *UserStore) SetPasswordHash(ctx context.Context, email, hash string, at time.Time) error {
	return updateMatched(ctx, s.coll, bson.M{"email": email}, bson.M{"$set": bson.M{"password_hash": hash, "updated_at": at}})
}
