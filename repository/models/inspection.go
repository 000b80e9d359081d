package models

import "time"

// Inspection record status values. Closed and ClosedWithFindings are
// terminal, no signature or status change is permitted past them.
const (
	InspectionStatusScheduled          = "Scheduled"
	InspectionStatusInProgress         = "InProgress"
	InspectionStatusPendingSignatures  = "PendingSignatures"
	InspectionStatusClosed             = "Closed"
	InspectionStatusClosedWithFindings = "ClosedWithFindings"
)

// Inspector role values.
const (
	RoleBrigadista = "Brigadista"
	RoleEquipoSST  = "Equipo SST"
	RoleCopasst    = "Copasst"
)

// Record-level general status values. Empty means not assessed; the
// closure classifier then relies on item-level findings alone.
// NonCompliant forces a closure with findings even when no individual
// item is classified as failing.
const (
	GeneralStatusCompliant     = "Compliant"
	GeneralStatusNonCompliant  = "NonCompliant"
	GeneralStatusNotApplicable = "NotApplicable"
)

// InspectionRecord represents an executed inspection of a given category.
// A record with ParentID set is a follow-up created by the follow-up
// generator to re-verify the parent's findings.
type InspectionRecord struct {
	ID             string            `gorm:"column:inspection_id;primaryKey;type:varchar(50)"`
	Category       string            `gorm:"column:category;type:varchar(50);index;not null"`
	InspectionDate time.Time         `gorm:"column:inspection_date;type:date;not null;index"`
	AreaID         string            `gorm:"column:area_id;type:varchar(50);index;not null"`
	Area           *Area             `gorm:"foreignKey:AreaID"`
	InspectorID    string            `gorm:"column:inspector_id;type:varchar(50);index"`
	Inspector      *User             `gorm:"foreignKey:InspectorID"`
	InspectorRole  string            `gorm:"column:inspector_role;type:varchar(20);default:'Equipo SST'"`
	Status         string            `gorm:"column:status;type:varchar(30);default:'InProgress'"`
	GeneralStatus  string            `gorm:"column:general_status;type:varchar(20)"`
	ScheduleItemID *string           `gorm:"column:schedule_id;type:varchar(50);index"`
	ScheduleItem   *ScheduleItem     `gorm:"foreignKey:ScheduleItemID"`
	ParentID       *string           `gorm:"column:parent_id;type:varchar(50);index"`
	Parent         *InspectionRecord `gorm:"foreignKey:ParentID"`
	Observations   string            `gorm:"column:observations;type:text"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Items      []CheckItem        `gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE"`
	Signatures []Signature        `gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE"`
	FollowUps  []InspectionRecord `gorm:"foreignKey:ParentID"`
}

// IsClosed reports whether the record reached a terminal status.
func (r *InspectionRecord) IsClosed() bool {
	return r.Status == InspectionStatusClosed || r.Status == InspectionStatusClosedWithFindings
}

// IsFollowUp reports whether the record was generated from a parent's
// closure with findings.
func (r *InspectionRecord) IsFollowUp() bool {
	return r.ParentID != nil
}

// SignedBy reports whether the given user already signed the record.
func (r *InspectionRecord) SignedBy(userID string) bool {
	for _, sig := range r.Signatures {
		if sig.UserID == userID {
			return true
		}
	}
	return false
}
