package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

type notificationInput struct {
	Title   string                 `json:"title" binding:"required,max=200"`
	Message string                 `json:"message" binding:"max=2000"`
	Type    string                 `json:"type"`
	UserID  *string                `json:"user_id"`
	IssueID *string                `json:"issue_id"`
	Data    map[string]interface{} `json:"data"`
}

func (in notificationInput) toService() services.CreateNotificationInput {
	typ := models.NotificationType(in.Type)
	if parsed, ok := models.ParseNotificationType(in.Type); ok {
		typ = parsed
	}
	return services.CreateNotificationInput{
		Title:   in.Title,
		Message: in.Message,
		Type:    typ,
		UserID:  in.UserID,
		IssueID: in.IssueID,
		Data:    in.Data,
	}
}

func (nc *NotificationController) Create(c *gin.Context) {
	var input notificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := nc.notifications.Create(ctx, caller(c), input.toService())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Notification created successfully",
		"notification_id": n.ID,
	})
}

func (nc *NotificationController) Broadcast(c *gin.Context) {
	var input notificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := nc.notifications.Broadcast(ctx, caller(c), input.toService())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Broadcast notification created successfully",
		"notification_id": n.ID,
	})
}

func (nc *NotificationController) List(c *gin.Context) {
	q, err := notificationQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := nc.notifications.List(ctx, caller(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (nc *NotificationController) UnreadCount(c *gin.Context) {
	typ, err := queryEnum(c, models.ParseNotificationType, "notification_type", "type")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := nc.notifications.UnreadCount(ctx, caller(c), typ)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (nc *NotificationController) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := nc.notifications.Get(ctx, caller(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := nc.notifications.MarkRead(ctx, caller(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := nc.notifications.MarkAllRead(ctx, caller(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("Marked %d notifications as read", count),
		"marked_count": count,
	})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := nc.notifications.Delete(ctx, caller(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

func (nc *NotificationController) ListAll(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := nc.notifications.ListAll(ctx, caller(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func notificationQuery(c *gin.Context) (services.NotificationQuery, error) {
	var q services.NotificationQuery
	page, err := pageFrom(c)
	if err != nil {
		return q, err
	}
	q.Page = page
	if raw := c.Query("unread_only"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperror.Validation("unread_only must be true or false")
		}
		q.UnreadOnly = unread
	}
	q.Type, err = queryEnum(c, models.ParseNotificationType, "notification_type", "type")
	return q, err
}
