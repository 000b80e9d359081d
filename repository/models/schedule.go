package models

import "time"

// Schedule item status values.
const (
	ScheduleStatusScheduled = "Scheduled"
	ScheduleStatusDone      = "Done"
	ScheduleStatusPending   = "Pending"
)

// Recurrence frequency values.
const (
	FrequencyMonthly     = "Monthly"
	FrequencyBimonthly   = "Bimonthly"
	FrequencyQuarterly   = "Quarterly"
	FrequencyFourMonthly = "FourMonthly"
	FrequencySemiAnnual  = "SemiAnnual"
	FrequencyAnnual      = "Annual"
	FrequencyNone        = "None"
)

// ScheduleItem represents a single planned inspection occurrence.
type ScheduleItem struct {
	ID            string    `gorm:"column:schedule_id;primaryKey;type:varchar(50)"`
	Year          int       `gorm:"column:year;not null;index"`
	AreaID        string    `gorm:"column:area_id;type:varchar(50);index;not null"`
	Area          *Area     `gorm:"foreignKey:AreaID"`
	Category      string    `gorm:"column:category;type:varchar(50);index;not null"`
	Frequency     string    `gorm:"column:frequency;type:varchar(20);default:'None'"`
	ScheduledDate time.Time `gorm:"column:scheduled_date;type:date;not null;index"`
	ResponsibleID string    `gorm:"column:responsible_id;type:varchar(50);index"`
	Responsible   *User     `gorm:"foreignKey:ResponsibleID"`
	Status        string    `gorm:"column:status;type:varchar(20);default:'Scheduled'"`
	Observations  string    `gorm:"column:observations;type:text"`
	AutoGenerated bool      `gorm:"column:auto_generated;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Inspections []InspectionRecord `gorm:"foreignKey:ScheduleItemID"`
}

// IsOverdue reports whether the scheduled date passed without execution.
func (s *ScheduleItem) IsOverdue(now time.Time) bool {
	return s.Status != ScheduleStatusDone && s.ScheduledDate.Before(dateOf(now))
}

// IsExecutable reports whether the item can be executed today.
func (s *ScheduleItem) IsExecutable(now time.Time) bool {
	return s.Status != ScheduleStatusDone && !s.ScheduledDate.After(dateOf(now))
}

// IsUpcoming reports whether the item falls within the warning window,
// [today, today+windowDays].
func (s *ScheduleItem) IsUpcoming(now time.Time, windowDays int) bool {
	if s.Status == ScheduleStatusDone {
		return false
	}
	today := dateOf(now)
	limit := today.AddDate(0, 0, windowDays)
	return !s.ScheduledDate.Before(today) && !s.ScheduledDate.After(limit)
}

// StatusLabel returns the display label for the item, delegating to the
// linked inspection record's status when one exists.
func (s *ScheduleItem) StatusLabel() string {
	if len(s.Inspections) > 0 {
		return s.Inspections[0].Status
	}
	if s.Status == ScheduleStatusDone {
		return ScheduleStatusDone
	}
	return "Pending execution"
}

// StatusClass returns a CSS-style class name for the status label.
func (s *ScheduleItem) StatusClass() string {
	switch s.StatusLabel() {
	case InspectionStatusClosed, ScheduleStatusDone:
		return "success"
	case InspectionStatusClosedWithFindings:
		return "danger"
	case InspectionStatusPendingSignatures, InspectionStatusInProgress:
		return "warning"
	default:
		return "secondary"
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
