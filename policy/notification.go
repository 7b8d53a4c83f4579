package policy

import (
	"civicreporter-be/models"
)

func CanViewNotification(c Caller, n *models.Notification) bool {
	if !c.Authenticated() {
		return false
	}
	return n.UserID == nil || *n.UserID == c.ID
}

func CanMarkNotificationRead(c Caller, n *models.Notification) bool {
	return CanViewNotification(c, n)
}

// CanDeleteNotification lets admins delete any notice, including other
// users' directed ones.
func CanDeleteNotification(c Caller, n *models.Notification) bool {
	return CanViewNotification(c, n) || c.IsAdmin()
}
