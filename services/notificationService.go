package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type CreateNotificationInput struct {
	Title   string
	Message string
	Type    models.NotificationType
	UserID  *string
	IssueID *string
	Data    map[string]interface{}
}

// NotificationQuery holds the optional filters of a notification listing.
type NotificationQuery struct {
	UnreadOnly bool
	Type       models.NotificationType
	Page       store.Page
}

type NotificationService struct {
	notifications NotificationRepository
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewNotificationService(notifications NotificationRepository, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log, now: time.Now}
}

// Notify stores n, filling in its id and creation time. It is the emit path
// used by the other workflows and never checks the caller.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	n.ID = newID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = s.now()
	if err := s.notifications.Insert(ctx, n); err != nil {
		return writeErr(err, "create notification")
	}
	return nil
}

// Create records a notice for one user, or for everyone when no user is
// given.
func (s *NotificationService) Create(ctx context.Context, caller policy.Caller, in CreateNotificationInput) (*models.Notification, error) {
	if err := policy.RequireAdmin(caller, "create notifications"); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

// Broadcast records a notice for everyone, ignoring any target user.
func (s *NotificationService) Broadcast(ctx context.Context, caller policy.Caller, in CreateNotificationInput) (*models.Notification, error) {
	if err := policy.RequireAdmin(caller, "broadcast notifications"); err != nil {
		return nil, err
	}
	in.UserID = nil
	return s.create(ctx, in)
}

func (s *NotificationService) create(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Validation("title is required")
	}
	if in.Type == "" {
		in.Type = models.NotifyInfo
	}
	if !in.Type.Valid() {
		return nil, apperror.Validation("unknown notification type " + string(in.Type))
	}
	n := &models.Notification{
		Title:   in.Title,
		Message: in.Message,
		Type:    in.Type,
		UserID:  in.UserID,
		IssueID: in.IssueID,
		Data:    in.Data,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"notification_id": n.ID, "broadcast": n.IsBroadcast()}).Info("notification created")
	return n, nil
}

// List returns the caller's directed notices together with every broadcast,
// newest first.
func (s *NotificationService) List(ctx context.Context, caller policy.Caller, q NotificationQuery) ([]models.Notification, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	filter := store.NotificationFilter{UserID: caller.ID, UnreadOnly: q.UnreadOnly, Type: q.Type}
	list, err := s.notifications.List(ctx, filter, q.Page.Clamp(DefaultNotificationLimit, MaxNotificationLimit))
	if err != nil {
		return nil, lookupErr(err, "notifications")
	}
	return list, nil
}

// UnreadCount counts the unread notices List would return.
func (s *NotificationService) UnreadCount(ctx context.Context, caller policy.Caller, typ models.NotificationType) (int64, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return 0, err
	}
	count, err := s.notifications.Count(ctx, store.NotificationFilter{UserID: caller.ID, UnreadOnly: true, Type: typ})
	if err != nil {
		return 0, lookupErr(err, "notifications")
	}
	return count, nil
}

func (s *NotificationService) Get(ctx context.Context, caller policy.Caller, id string) (*models.Notification, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "notification")
	}
	if !policy.CanViewNotification(caller, n) {
		return nil, apperror.Forbidden("view this notification")
	}
	return n, nil
}

// MarkRead is idempotent: an already read notice is left untouched.
func (s *NotificationService) MarkRead(ctx context.Context, caller policy.Caller, id string) error {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return err
	}
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "notification")
	}
	if !policy.CanMarkNotificationRead(caller, n) {
		return apperror.Forbidden("mark this notification as read")
	}
	if n.IsRead {
		return nil
	}
	if err := s.notifications.MarkRead(ctx, id, s.now()); err != nil {
		return writeErr(err, "mark notification as read")
	}
	return nil
}

// MarkAllRead marks every unread notice visible to the caller, broadcasts
// included, and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller policy.Caller) (int64, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return 0, err
	}
	count, err := s.notifications.MarkAllRead(ctx, caller.ID, s.now())
	if err != nil {
		return 0, writeErr(err, "mark notifications as read")
	}
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, caller policy.Caller, id string) error {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return err
	}
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "notification")
	}
	if !policy.CanDeleteNotification(caller, n) {
		return apperror.Forbidden("delete this notification")
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		return writeErr(err, "delete notification")
	}
	s.log.WithFields(logrus.Fields{"notification_id": id, "by": caller.ID}).Info("notification deleted")
	return nil
}

func (s *NotificationService) ListAll(ctx context.Context, caller policy.Caller, page store.Page) ([]models.Notification, error) {
	if err := policy.RequireAdmin(caller, "list all notifications"); err != nil {
		return nil, err
	}
	list, err := s.notifications.ListAll(ctx, page.Clamp(DefaultNotificationLimit, MaxNotificationLimit))
	if err != nil {
		return nil, lookupErr(err, "notifications")
	}
	return list, nil
}
