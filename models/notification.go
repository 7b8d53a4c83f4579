package models

import "time"

// Notification is a notice either directed at one user or, with a nil
// UserID, broadcast to everyone.
type Notification struct {
	ID        string                 `bson:"id" json:"id" validate:"required"`
	Title     string                 `bson:"title" json:"title" validate:"required"`
	Message   string                 `bson:"message" json:"message"`
	Type      NotificationType       `bson:"type" json:"type" validate:"required,enum"`
	UserID    *string                `bson:"user_id" json:"user_id"`
	IssueID   *string                `bson:"issue_id" json:"issue_id"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool                   `bson:"is_read" json:"is_read"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time             `bson:"read_at" json:"read_at"`
}

func (n *Notification) IsBroadcast() bool {
	return n.UserID == nil
}

func (n *Notification) Validate() error {
	return check("notification", n.ID, n)
}
