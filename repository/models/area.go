package models

// Area represents a physical location subject to inspection.
type Area struct {
	ID          string `gorm:"column:area_id;primaryKey;type:varchar(50)"`
	Name        string `gorm:"column:name;type:varchar(200);uniqueIndex;not null"`
	Description string `gorm:"column:description;type:text"`
	IsActive    bool   `gorm:"column:is_active;default:true"`

	// Relationships
	ScheduleItems []ScheduleItem     `gorm:"foreignKey:AreaID"`
	Inspections   []InspectionRecord `gorm:"foreignKey:AreaID"`
}
