package models

import "time"

// User represents a person who schedules, executes or signs inspections.
type User struct {
	ID               string    `gorm:"column:user_id;primaryKey;type:varchar(50)"`
	Email            string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	FullName         string    `gorm:"column:full_name;type:varchar(150);not null"`
	RoleName         string    `gorm:"column:role_name;type:varchar(50)"`
	DocumentNumber   string    `gorm:"column:document_number;type:varchar(20)"`
	DigitalSignature string    `gorm:"column:digital_signature;type:text"` // base64 image, empty if none registered
	IsActive         bool      `gorm:"column:is_active;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	ScheduledItems []ScheduleItem     `gorm:"foreignKey:ResponsibleID"`
	Inspections    []InspectionRecord `gorm:"foreignKey:InspectorID"`
	Signatures     []Signature        `gorm:"foreignKey:UserID"`
}

// HasSignatureOnFile reports whether the user registered a signature blob.
func (u *User) HasSignatureOnFile() bool {
	return u.DigitalSignature != ""
}

// HasPermission checks role-based access for the surrounding CRUD layer.
// Administrators pass every check; the engine itself never consults this,
// signing is gated by participant membership instead.
func (u *User) HasPermission(module, action string, grants []RoleGrant) bool {
	if u.RoleName == "Administrador" {
		return true
	}
	for _, g := range grants {
		if g.RoleName == u.RoleName && g.Module == module && g.Action == action {
			return true
		}
	}
	return false
}

// RoleGrant is one (role, module, action) permission tuple.
type RoleGrant struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RoleName string `gorm:"column:role_name;type:varchar(50);index;not null"`
	Module   string `gorm:"column:module;type:varchar(50);not null"`
	Action   string `gorm:"column:action;type:varchar(50);not null"`
}
