// Package services holds the workflows of the civic report backend: the
// identity directory, the report status engine, the registration and reset
// approval pipeline, and notification fan-out. Every operation takes the
// resolved caller and asks the policy package before mutating anything.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/store"
)

// UserRepository describes what the directory needs from user storage.
type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RoleExists(ctx context.Context, role models.Role) (bool, error)
	List(ctx context.Context, role models.Role, page store.Page) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	SetPasswordHash(ctx context.Context, email, hash string, at time.Time) error
}

type ReportRepository interface {
	Insert(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, f store.ReportFilter, page store.Page) ([]models.Report, error)
	AppendUpdate(ctx context.Context, reportID string, change store.StatusChange) error
	CountByStatus(ctx context.Context, department models.Department) (map[models.ReportStatus]int64, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, f store.NotificationFilter, page store.Page) ([]models.Notification, error)
	Count(ctx context.Context, f store.NotificationFilter) (int64, error)
	ListAll(ctx context.Context, page store.Page) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type RegistrationRepository interface {
	Insert(ctx context.Context, r *models.RegistrationRequest) error
	FindByID(ctx context.Context, id string) (*models.RegistrationRequest, error)
	LiveExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, status models.RegistrationStatus, page store.Page) ([]models.RegistrationRequest, error)
	Resolve(ctx context.Context, id string, status models.RegistrationStatus, res store.Resolution) error
}

type PasswordResetRepository interface {
	Insert(ctx context.Context, r *models.PasswordResetRequest) error
	FindByID(ctx context.Context, id string) (*models.PasswordResetRequest, error)
	List(ctx context.Context, page store.Page) ([]models.PasswordResetRequest, error)
	Resolve(ctx context.Context, id string, status models.ResetStatus, res store.Resolution) error
}

// lookupErr translates a failed read or keyed write into the error taxonomy.
func lookupErr(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound(what)
	case errors.Is(err, store.ErrDuplicate):
		return apperror.Conflict(what + " already exists")
	default:
		return apperror.Internal(err, "failed to load "+what)
	}
}

// writeErr is used once the target is known to exist: any failure, including
// a write that affected nothing, is a store failure.
func writeErr(err error, action string) error {
	return apperror.Internal(err, "failed to "+action)
}

func newID() string {
	return uuid.NewString()
}
