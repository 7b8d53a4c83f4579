package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

func notice(id string, target *string, read bool, typ models.NotificationType, age int) models.Notification {
	return models.Notification{
		ID:        id,
		Title:     "notice " + id,
		Type:      typ,
		UserID:    target,
		IsRead:    read,
		CreatedAt: fixedAt.Add(-time.Duration(age) * time.Minute),
	}
}

// seedInbox gives asha 3 unread directed notices and 1 read one, ravi 2
// directed notices, and everyone 2 unread broadcasts.
func seedInbox(e *env) {
	for _, n := range []models.Notification{
		notice("a1", ptr("asha"), false, models.NotifyStatusUpdate, 1),
		notice("a2", ptr("asha"), false, models.NotifyInfo, 2),
		notice("a3", ptr("asha"), false, models.NotifyStatusUpdate, 3),
		notice("a4", ptr("asha"), true, models.NotifyInfo, 4),
		notice("r1", ptr("ravi"), false, models.NotifyInfo, 5),
		notice("r2", ptr("ravi"), true, models.NotifyUrgent, 6),
		notice("b1", nil, false, models.NotifyInfo, 7),
		notice("b2", nil, false, models.NotifyUrgent, 8),
	} {
		n := n
		_ = e.notificationStore.Insert(ctx, &n)
	}
}

func TestListNotifications(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	seedInbox(e)

	list, err := e.notifications.List(ctx, asha, NotificationQuery{})
	require.NoError(t, err)

	var ids []string
	for _, n := range list {
		ids = append(ids, n.ID)
		if n.UserID != nil {
			assert.Equal(t, "asha", *n.UserID, "never another user's directed notice")
		}
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "a4", "b1", "b2"}, ids, "newest first, broadcasts included")

	_, err = e.notifications.List(ctx, policy.Anonymous, NotificationQuery{})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestUnreadCountMatchesListing(t *testing.T) {
	e := newEnv(t)
	callers := []policy.Caller{
		e.addUser(t, "asha", models.RolePublic, ""),
		e.addUser(t, "ravi", models.RolePublic, ""),
		e.addUser(t, "nobody", models.RoleOfficer, models.Drainage),
	}
	seedInbox(e)

	types := append([]models.NotificationType{""}, models.AllNotificationTypes...)
	for _, caller := range callers {
		for _, typ := range types {
			t.Run(fmt.Sprintf("%s/%s", caller.ID, typ), func(t *testing.T) {
				listed, err := e.notifications.List(ctx, caller, NotificationQuery{Type: typ, Page: store.Page{Limit: MaxNotificationLimit}})
				require.NoError(t, err)
				var unread int64
				for _, n := range listed {
					if !n.IsRead {
						unread++
					}
				}

				count, err := e.notifications.UnreadCount(ctx, caller, typ)
				require.NoError(t, err)
				assert.Equal(t, unread, count)

				onlyUnread, err := e.notifications.List(ctx, caller, NotificationQuery{Type: typ, UnreadOnly: true, Page: store.Page{Limit: MaxNotificationLimit}})
				require.NoError(t, err)
				assert.Len(t, onlyUnread, int(count))
			})
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	ravi := e.addUser(t, "ravi", models.RolePublic, "")
	seedInbox(e)

	count, err := e.notifications.MarkAllRead(ctx, asha)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	unread, err := e.notifications.UnreadCount(ctx, asha, "")
	require.NoError(t, err)
	assert.Zero(t, unread)

	r1, err := e.notificationStore.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, r1.IsRead, "other users' directed notices are untouched")

	again, err := e.notifications.MarkAllRead(ctx, asha)
	require.NoError(t, err)
	assert.Zero(t, again, "nothing left is a valid answer")

	ravis, err := e.notifications.MarkAllRead(ctx, ravi)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ravis, "broadcasts were already marked read")
}

func TestMarkRead(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	seedInbox(e)

	require.NoError(t, e.notifications.MarkRead(ctx, asha, "a1"))
	n, err := e.notificationStore.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)
	firstRead := *n.ReadAt

	require.NoError(t, e.notifications.MarkRead(ctx, asha, "a1"), "marking twice is a no-op")
	n, err = e.notificationStore.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, firstRead, *n.ReadAt)

	require.NoError(t, e.notifications.MarkRead(ctx, asha, "b1"))

	assert.True(t, apperror.IsForbidden(e.notifications.MarkRead(ctx, asha, "r1")))
	assert.True(t, apperror.IsNotFound(e.notifications.MarkRead(ctx, asha, "missing")))
}

func TestGetNotification(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	admin := e.addUser(t, "root", models.RoleAdmin, "")
	seedInbox(e)

	_, err := e.notifications.Get(ctx, asha, "a1")
	assert.NoError(t, err)
	_, err = e.notifications.Get(ctx, asha, "b2")
	assert.NoError(t, err)
	_, err = e.notifications.Get(ctx, asha, "r1")
	assert.True(t, apperror.IsForbidden(err))
	_, err = e.notifications.Get(ctx, admin, "r1")
	assert.True(t, apperror.IsForbidden(err), "viewing follows the target, even for admins")
	_, err = e.notifications.Get(ctx, asha, "missing")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteNotification(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	admin := e.addUser(t, "root", models.RoleAdmin, "")
	seedInbox(e)

	require.NoError(t, e.notifications.Delete(ctx, asha, "a1"))
	_, err := e.notificationStore.FindByID(ctx, "a1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.True(t, apperror.IsForbidden(e.notifications.Delete(ctx, asha, "r1")))
	require.NoError(t, e.notifications.Delete(ctx, admin, "r1"), "admins delete any notice")
	assert.True(t, apperror.IsNotFound(e.notifications.Delete(ctx, admin, "r1")))
}

func TestCreateAndBroadcast(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	admin := e.addUser(t, "root", models.RoleAdmin, "")

	directed, err := e.notifications.Create(ctx, admin, CreateNotificationInput{
		Title:  "Hello",
		UserID: ptr("asha"),
	})
	require.NoError(t, err)
	assert.False(t, directed.IsBroadcast())
	assert.Equal(t, models.NotifyInfo, directed.Type)
	assert.NotEmpty(t, directed.ID)

	broadcast, err := e.notifications.Broadcast(ctx, admin, CreateNotificationInput{
		Title:  "Water outage",
		Type:   models.NotifyUrgent,
		UserID: ptr("asha"),
	})
	require.NoError(t, err)
	assert.True(t, broadcast.IsBroadcast(), "broadcast ignores the target")

	_, err = e.notifications.Create(ctx, asha, CreateNotificationInput{Title: "spam"})
	assert.True(t, apperror.IsForbidden(err))
	_, err = e.notifications.Broadcast(ctx, asha, CreateNotificationInput{Title: "spam"})
	assert.True(t, apperror.IsForbidden(err))

	_, err = e.notifications.Create(ctx, admin, CreateNotificationInput{Title: "x", Type: "gossip"})
	assert.True(t, apperror.IsValidation(err))

	list, err := e.notifications.List(ctx, asha, NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListAllNotifications(t *testing.T) {
	e := newEnv(t)
	asha := e.addUser(t, "asha", models.RolePublic, "")
	admin := e.addUser(t, "root", models.RoleAdmin, "")
	seedInbox(e)

	all, err := e.notifications.ListAll(ctx, admin, store.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 8)

	page, err := e.notifications.ListAll(ctx, admin, store.Page{Skip: 6, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = e.notifications.ListAll(ctx, asha, store.Page{})
	assert.True(t, apperror.IsForbidden(err))
}
