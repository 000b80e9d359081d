package engine

import (
	"fmt"
	"strings"

	"github.com/safetrack/safetrack/repository/models"
)

// ValidateBeforeSign checks that every failing check item carries a
// non-blank observation. Returns nil when the record is signable, or a
// VALIDATION_ERROR naming each offending item. Must pass before any
// signature is accepted and before closure.
func ValidateBeforeSign(record *models.InspectionRecord) *Error {
	var itemErrors []ItemError
	for _, item := range record.Items {
		if !Classify(record.Category, item.ItemStatus) {
			continue
		}
		if strings.TrimSpace(item.Observations) != "" {
			continue
		}
		itemErrors = append(itemErrors, ItemError{
			ItemID:  item.ID,
			Label:   item.Label,
			Message: fmt.Sprintf("item %q is marked %s and requires an observation", item.Label, item.ItemStatus),
		})
	}
	if len(itemErrors) == 0 {
		return nil
	}
	return &Error{
		Code:    ErrCodeValidation,
		Message: "failing items require observations before signing",
		Detail:  fmt.Sprintf("%d item(s) missing observations", len(itemErrors)),
		Items:   itemErrors,
	}
}

// Findings returns the check items classified as failing for the
// record's category.
func Findings(record *models.InspectionRecord) []models.CheckItem {
	var failing []models.CheckItem
	for _, item := range record.Items {
		if Classify(record.Category, item.ItemStatus) {
			failing = append(failing, item)
		}
	}
	return failing
}
