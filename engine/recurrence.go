package engine

import (
	"fmt"
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// FrequencyMonths maps a recurrence frequency to its offset in calendar
// months. Returns 0 for None, empty or unknown frequencies.
func FrequencyMonths(frequency string) int {
	switch frequency {
	case models.FrequencyMonthly:
		return 1
	case models.FrequencyBimonthly:
		return 2
	case models.FrequencyQuarterly:
		return 3
	case models.FrequencyFourMonthly:
		return 4
	case models.FrequencySemiAnnual:
		return 6
	case models.FrequencyAnnual:
		return 12
	}
	return 0
}

// addMonthsClamped advances d by the given number of calendar months,
// clamping the day to the last valid day of the target month.
// 2025-01-31 + 1 month is 2025-02-28, not an overflow into March.
func addMonthsClamped(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, d.Location())
}

// NextOccurrenceDate computes the date of the next occurrence for a
// schedule item. The second return is false when the item does not recur.
func NextOccurrenceDate(item *models.ScheduleItem) (time.Time, bool) {
	months := FrequencyMonths(item.Frequency)
	if months == 0 {
		return time.Time{}, false
	}
	return addMonthsClamped(item.ScheduledDate, months), true
}

// GenerateNextOccurrence projects the next scheduled occurrence from a
// completed schedule item. Returns nil without error when the item does
// not recur, or when an item with identical (area, category, date)
// already exists; the existence check makes retried calls idempotent.
// The source item is not mutated.
func GenerateNextOccurrence(store Store, item *models.ScheduleItem) (*models.ScheduleItem, error) {
	nextDate, ok := NextOccurrenceDate(item)
	if !ok {
		return nil, nil
	}

	exists, err := store.ScheduleItemExists(item.AreaID, item.Category, nextDate)
	if err != nil {
		return nil, persistenceErr("check next occurrence", err)
	}
	if exists {
		return nil, nil
	}

	next := &models.ScheduleItem{
		ID:            newID("SCH"),
		Year:          nextDate.Year(),
		AreaID:        item.AreaID,
		Category:      item.Category,
		Frequency:     item.Frequency,
		ScheduledDate: nextDate,
		ResponsibleID: item.ResponsibleID,
		Status:        models.ScheduleStatusScheduled,
		AutoGenerated: true,
		Observations: fmt.Sprintf("Auto-generated from occurrence of %s.",
			item.ScheduledDate.Format("2006-01-02")),
	}
	if err := store.CreateScheduleItem(next); err != nil {
		return nil, persistenceErr("create next occurrence", err)
	}
	return next, nil
}
