package models

// ObservationsMaxLen is the column width of CheckItem.Observations; the
// follow-up generator truncates prefixed observations to this length.
const ObservationsMaxLen = 255

// CheckItem is one checklist line within an inspection record. Label holds
// the category-specific identification: a standard question for template
// categories, a location or element name for ad hoc ones.
type CheckItem struct {
	ID           string            `gorm:"column:check_item_id;primaryKey;type:varchar(50)"`
	InspectionID string            `gorm:"column:inspection_id;type:varchar(50);index;not null"`
	Inspection   *InspectionRecord `gorm:"foreignKey:InspectionID"`
	Label        string            `gorm:"column:label;type:varchar(500);not null"`
	ItemStatus   string            `gorm:"column:item_status;type:varchar(20)"`
	Observations string            `gorm:"column:observations;type:varchar(255)"`
	Position     int               `gorm:"column:position;default:0"`
}
