package engine

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/safetrack/safetrack/repository/models"
)

func seedParentWithItems(store *memStore, category string, items []models.CheckItem) *models.InspectionRecord {
	parent := &models.InspectionRecord{
		ID:             "INS-PARENT",
		Category:       category,
		InspectionDate: date(2025, time.March, 1),
		AreaID:         "AREA-1",
		InspectorID:    "USR-1",
		InspectorRole:  models.RoleBrigadista,
		Status:         models.InspectionStatusClosedWithFindings,
		Items:          items,
	}
	store.inspections[parent.ID] = parent
	return parent
}

func TestGenerateFollowUpCopiesOnlyFailingItems(t *testing.T) {
	store := newMemStore()
	items := []models.CheckItem{
		{ID: "CHK-1", Label: "Ext-01", ItemStatus: "Good"},
		{ID: "CHK-2", Label: "Ext-02", ItemStatus: "Bad", Observations: "broken hose"},
		{ID: "CHK-3", Label: "Ext-03", ItemStatus: "NeedsRecharge"},
		{ID: "CHK-4", Label: "Ext-04", ItemStatus: "Bad", Observations: "missing seal"},
		{ID: "CHK-5", Label: "Ext-05", ItemStatus: "Good"},
		{ID: "CHK-6", Label: "Ext-06", ItemStatus: "Bad", Observations: "expired"},
		{ID: "CHK-7", Label: "Ext-07", ItemStatus: "Good"},
		{ID: "CHK-8", Label: "Ext-08", ItemStatus: "Good"},
	}
	parent := seedParentWithItems(store, CategoryExtinguisher, items)

	now := date(2025, time.March, 10)
	child, err := GenerateFollowUp(store, parent, 15, now)
	if err != nil {
		t.Fatalf("GenerateFollowUp: %v", err)
	}

	if len(child.Items) != 3 {
		t.Fatalf("len(child.Items) = %d, want 3", len(child.Items))
	}
	wantLabels := []string{"Ext-02", "Ext-04", "Ext-06"}
	for i, item := range child.Items {
		if item.Label != wantLabels[i] {
			t.Errorf("child.Items[%d].Label = %q, want %q", i, item.Label, wantLabels[i])
		}
		if item.ItemStatus != "Bad" {
			t.Errorf("child.Items[%d].ItemStatus = %q, want Bad", i, item.ItemStatus)
		}
		if !strings.HasPrefix(item.Observations, "Follow-up: ") {
			t.Errorf("child.Items[%d].Observations = %q, want Follow-up: prefix", i, item.Observations)
		}
		if item.Position != i {
			t.Errorf("child.Items[%d].Position = %d, want %d", i, item.Position, i)
		}
	}

	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("child.ParentID = %v, want %s", child.ParentID, parent.ID)
	}
	if child.Category != parent.Category || child.AreaID != parent.AreaID {
		t.Errorf("child did not inherit category/area: %+v", child)
	}
	if child.InspectorID != parent.InspectorID || child.InspectorRole != parent.InspectorRole {
		t.Errorf("child did not inherit inspector: %+v", child)
	}
	if child.Status != models.InspectionStatusScheduled {
		t.Errorf("child.Status = %q, want %q", child.Status, models.InspectionStatusScheduled)
	}
	if want := date(2025, time.March, 25); !child.InspectionDate.Equal(want) {
		t.Errorf("child.InspectionDate = %s, want %s", child.InspectionDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestGenerateFollowUpTruncatesObservations(t *testing.T) {
	store := newMemStore()
	long := strings.Repeat("x", models.ObservationsMaxLen)
	parent := seedParentWithItems(store, CategoryExtinguisher, []models.CheckItem{
		{ID: "CHK-1", Label: "Ext-01", ItemStatus: "Bad", Observations: long},
	})

	child, err := GenerateFollowUp(store, parent, 15, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("GenerateFollowUp: %v", err)
	}
	got := child.Items[0].Observations
	if len(got) != models.ObservationsMaxLen {
		t.Errorf("len(Observations) = %d, want %d", len(got), models.ObservationsMaxLen)
	}
	if !strings.HasPrefix(got, "Follow-up: ") {
		t.Errorf("Observations = %q, want Follow-up: prefix", got[:20])
	}
}

func TestGenerateFollowUpTruncatesOnRuneBoundary(t *testing.T) {
	store := newMemStore()
	long := strings.Repeat("ñ", models.ObservationsMaxLen)
	parent := seedParentWithItems(store, CategoryExtinguisher, []models.CheckItem{
		{ID: "CHK-1", Label: "Ext-01", ItemStatus: "Bad", Observations: long},
	})

	child, err := GenerateFollowUp(store, parent, 15, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("GenerateFollowUp: %v", err)
	}
	got := child.Items[0].Observations
	if !utf8.ValidString(got) {
		t.Error("Observations is not valid UTF-8 after truncation")
	}
	if n := utf8.RuneCountInString(got); n != models.ObservationsMaxLen {
		t.Errorf("rune count = %d, want %d", n, models.ObservationsMaxLen)
	}
	if !strings.HasPrefix(got, "Follow-up: ") {
		t.Errorf("Observations lost its prefix: %q", got[:20])
	}
}

func TestGenerateFollowUpResetsStatusToFailingMarker(t *testing.T) {
	store := newMemStore()
	parent := seedParentWithItems(store, CategoryFirstAid, []models.CheckItem{
		{ID: "CHK-1", Label: "Kit A", ItemStatus: "DoesNotExist", Observations: "stolen"},
	})

	child, err := GenerateFollowUp(store, parent, 10, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("GenerateFollowUp: %v", err)
	}
	if got := child.Items[0].ItemStatus; got != "DoesNotExist" {
		t.Errorf("child item status = %q, want DoesNotExist", got)
	}
}

func TestTotalFollowUpCount(t *testing.T) {
	store := newMemStore()
	root := &models.InspectionRecord{ID: "INS-ROOT", Category: CategoryExtinguisher}
	store.inspections[root.ID] = root

	rootID := root.ID
	child := &models.InspectionRecord{ID: "INS-CHILD", Category: CategoryExtinguisher, ParentID: &rootID}
	store.inspections[child.ID] = child

	childID := child.ID
	grandchild := &models.InspectionRecord{ID: "INS-GRANDCHILD", Category: CategoryExtinguisher, ParentID: &childID}
	store.inspections[grandchild.ID] = grandchild

	count, err := TotalFollowUpCount(store, root.ID)
	if err != nil {
		t.Fatalf("TotalFollowUpCount: %v", err)
	}
	if count != 2 {
		t.Errorf("TotalFollowUpCount = %d, want 2", count)
	}

	count, err = TotalFollowUpCount(store, grandchild.ID)
	if err != nil {
		t.Fatalf("TotalFollowUpCount on leaf: %v", err)
	}
	if count != 0 {
		t.Errorf("TotalFollowUpCount on leaf = %d, want 0", count)
	}
}

func TestTotalFollowUpCountSurvivesCorruptChain(t *testing.T) {
	store := newMemStore()
	aID, bID := "INS-A", "INS-B"
	// A and B point at each other; the visited set must break the loop.
	store.inspections[aID] = &models.InspectionRecord{ID: aID, ParentID: &bID}
	store.inspections[bID] = &models.InspectionRecord{ID: bID, ParentID: &aID}

	count, err := TotalFollowUpCount(store, aID)
	if err != nil {
		t.Fatalf("TotalFollowUpCount: %v", err)
	}
	if count != 1 {
		t.Errorf("TotalFollowUpCount = %d, want 1", count)
	}
}
