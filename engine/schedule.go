package engine

import (
	"fmt"
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// CreateScheduleItem plans a new inspection occurrence by user action.
// Auto-generated occurrences come from GenerateNextOccurrence instead.
func (e *Engine) CreateScheduleItem(actorID, areaID, category, frequency string, date time.Time, observations string) (*models.ScheduleItem, error) {
	if _, ok := LookupCategory(category); !ok {
		return nil, &Error{
			Code:    ErrCodeInvalidState,
			Message: "unknown inspection category",
			Detail:  fmt.Sprintf("category %q is not registered", category),
		}
	}
	if frequency != models.FrequencyNone && FrequencyMonths(frequency) == 0 {
		return nil, &Error{
			Code:    ErrCodeInvalidState,
			Message: "unknown frequency",
			Detail:  fmt.Sprintf("frequency %q is not a valid recurrence", frequency),
		}
	}

	var item *models.ScheduleItem
	err := e.store.InTransaction(func(tx Store) error {
		if _, err := tx.GetArea(areaID); err != nil {
			return notFoundErr("area", areaID)
		}
		if _, err := tx.GetUser(actorID); err != nil {
			return notFoundErr("user", actorID)
		}

		item = &models.ScheduleItem{
			ID:            newID("SCH"),
			Year:          date.Year(),
			AreaID:        areaID,
			Category:      category,
			Frequency:     frequency,
			ScheduledDate: dateOnly(date),
			ResponsibleID: actorID,
			Status:        models.ScheduleStatusScheduled,
			Observations:  observations,
		}
		if err := tx.CreateScheduleItem(item); err != nil {
			return persistenceErr("create schedule item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpcomingScheduleItems returns the not-yet-executed items whose
// scheduled date falls within the configured warning window, for the
// pending-inspection reminder.
func (e *Engine) UpcomingScheduleItems(filter ScheduleFilter) ([]models.ScheduleItem, error) {
	items, err := e.store.ListScheduleItems(filter)
	if err != nil {
		return nil, persistenceErr("list schedule items", err)
	}
	window := e.config.Int(models.ConfigKeyUpcomingWarning, 7)
	now := e.now()

	var upcoming []models.ScheduleItem
	for _, item := range items {
		if item.IsUpcoming(now, window) {
			upcoming = append(upcoming, item)
		}
	}
	return upcoming, nil
}
