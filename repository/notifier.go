package repository

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/safetrack/safetrack/repository/models"
)

// Notifier returns the engine notification sink, backed by the
// notifications table.
func (r *Repository) Notifier() *DBNotifier {
	return &DBNotifier{repo: r}
}

// DBNotifier stores notifications as rows read by the in-app inbox.
// Fire-and-forget: write failures are logged and never surfaced into the
// business transaction that emitted the notification.
type DBNotifier struct {
	repo *Repository
}

func (n *DBNotifier) Notify(userIDs []string, title, message, link string) {
	for _, userID := range userIDs {
		notification := models.Notification{
			ID:      fmt.Sprintf("NOT-%s", uuid.NewString()),
			UserID:  userID,
			Title:   title,
			Message: message,
			Link:    link,
			Type:    models.NotificationTypeInspection,
		}
		if err := n.repo.db.Create(&notification).Error; err != nil {
			log.Printf("Failed to deliver notification to %s: %v", userID, err)
		}
	}
}

// UnreadNotifications lists a user's unread notifications, newest first.
func (r *Repository) UnreadNotifications(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, mapError(err)
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (r *Repository) MarkNotificationRead(id string) error {
	err := r.db.Model(&models.Notification{}).
		Where("notification_id = ?", id).
		Update("is_read", true).Error
	if err != nil {
		return mapError(err)
	}
	return nil
}
