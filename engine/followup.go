package engine

import (
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// DefaultFollowUpDays is the due-date offset used when the
// dias_seguimiento_auto configuration key is absent.
const DefaultFollowUpDays = 15

const followUpPrefix = "Follow-up: "

// GenerateFollowUp creates the corrective child record for a closure
// with findings: same category, area, inspector and role as the parent,
// due days from now, holding a copy of every failing item reset to the
// category's failing marker for re-verification. Passing items are not
// copied. The caller invokes this exactly once per ClosedWithFindings
// transition.
func GenerateFollowUp(store Store, parent *models.InspectionRecord, days int, now time.Time) (*models.InspectionRecord, error) {
	spec, _ := LookupCategory(parent.Category)

	child := &models.InspectionRecord{
		ID:             newID("INS"),
		Category:       parent.Category,
		InspectionDate: dateOnly(now).AddDate(0, 0, days),
		AreaID:         parent.AreaID,
		InspectorID:    parent.InspectorID,
		InspectorRole:  parent.InspectorRole,
		Status:         models.InspectionStatusScheduled,
		ParentID:       &parent.ID,
	}

	for i, item := range Findings(parent) {
		marker := spec.FailingMarker
		if marker == "" {
			marker = item.ItemStatus
		}
		child.Items = append(child.Items, models.CheckItem{
			ID:           newID("CHK"),
			InspectionID: child.ID,
			Label:        item.Label,
			ItemStatus:   marker,
			Observations: prefixObservation(item.Observations),
			Position:     i,
		})
	}

	if err := store.CreateInspection(child); err != nil {
		return nil, persistenceErr("create follow-up inspection", err)
	}
	return child, nil
}

// prefixObservation prepends the follow-up marker, truncated to the
// column width. varchar widths count characters, and a byte slice could
// cut a multi-byte rune in half, so the cut is made on runes.
func prefixObservation(original string) string {
	prefixed := followUpPrefix + original
	runes := []rune(prefixed)
	if len(runes) > models.ObservationsMaxLen {
		prefixed = string(runes[:models.ObservationsMaxLen])
	}
	return prefixed
}

// TotalFollowUpCount counts all descendants of a record: children,
// grandchildren and so on. The walk is iterative with a visited set, so
// a corrupted parent chain cannot loop or blow the stack.
func TotalFollowUpCount(store Store, recordID string) (int, error) {
	visited := map[string]bool{recordID: true}
	queue := []string{recordID}
	count := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := store.ListChildren(current)
		if err != nil {
			return 0, persistenceErr("list follow-ups", err)
		}
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			count++
			queue = append(queue, child.ID)
		}
	}
	return count, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
