package models

import "time"

// Notification types.
const (
	NotificationTypeSystem     = "system"
	NotificationTypeAlert      = "alert"
	NotificationTypeInspection = "inspection"
)

// Notification is an internal message delivered to one user.
type Notification struct {
	ID        string    `gorm:"column:notification_id;primaryKey;type:varchar(50)"`
	UserID    string    `gorm:"column:user_id;type:varchar(50);index;not null"`
	User      *User     `gorm:"foreignKey:UserID"`
	Title     string    `gorm:"column:title;type:varchar(200);not null"`
	Message   string    `gorm:"column:message;type:text"`
	Link      string    `gorm:"column:link;type:varchar(255)"`
	Type      string    `gorm:"column:notification_type;type:varchar(20);default:'system'"`
	IsRead    bool      `gorm:"column:is_read;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// NotificationGroup is a named audience for broadcast notifications,
// e.g. the supervisors group alerted on closures with findings.
type NotificationGroup struct {
	ID       string `gorm:"column:group_id;primaryKey;type:varchar(50)"`
	Name     string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active;default:true"`
	Users    []User `gorm:"many2many:notification_group_users"`
}
