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

// Resolution is an admin's recorded answer to a pending request.
type Resolution struct {
	Response    string
	RespondedBy string
	At          time.Time
}

func (r Resolution) set(status interface{}) bson.M {
	return bson.M{"$set": bson.M{
		"status":         status,
		"admin_response": r.Response,
		"responded_by":   r.RespondedBy,
		"response_date":  r.At,
	}}
}

type RegistrationStore struct {
	coll *mongo.Collection
}

func NewRegistrationStore(db *mongo.Database) *RegistrationStore {
	return &RegistrationStore{coll: db.Collection(RegistrationsCollection)}
}

func (s *RegistrationStore) Insert(ctx context.Context, r *models.RegistrationRequest) error {
	return insertOne(ctx, s.coll, r)
}

func (s *RegistrationStore) FindByID(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	return findOne[models.RegistrationRequest](ctx, s.coll, byID(id))
}

// LiveExists reports whether an unadjudicated request holds email.
func (s *RegistrationStore) LiveExists(ctx context.Context, email string) (bool, error) {
	filter := bson.M{"email": email, "status": models.RegistrationNotified}
	count, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count registration requests: %w", err)
	}
	return count > 0, nil
}

func (s *RegistrationStore) List(ctx context.Context, status models.RegistrationStatus, page Page) ([]models.RegistrationRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findMany[models.RegistrationRequest](ctx, s.coll, filter, page.findOptions("request_date"))
}

func (s *RegistrationStore) Resolve(ctx context.Context, id string, status models.RegistrationStatus, res Resolution) error {
	return updateMatched(ctx, s.coll, byID(id), res.set(status))
}

type PasswordResetStore struct {
	coll *mongo.Collection
}

func NewPasswordResetStore(db *mongo.Database) *PasswordResetStore {
	return &PasswordResetStore{coll: db.Collection(PasswordResetsCollection)}
}

func (s *PasswordResetStore) Insert(ctx context.Context, r *models.PasswordResetRequest) error {
	return insertOne(ctx, s.coll, r)
}

func (s *PasswordResetStore) FindByID(ctx context.Context, id string) (*models.PasswordResetRequest, error) {
	return findOne[models.PasswordResetRequest](ctx, s.coll, byID(id))
}

func (s *PasswordResetStore) List(ctx context.Context, page Page) ([]models.PasswordResetRequest, error) {
	return findMany[models.PasswordResetRequest](ctx, s.coll, bson.M{}, page.findOptions("request_date"))
}

func (s *PasswordResetStore) Resolve(ctx context.Context, id string, status models.ResetStatus, res Resolution) error {
	return updateMatched(ctx, s.coll, byID(id), res.set(status))
}
