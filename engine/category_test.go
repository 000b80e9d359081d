package engine

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		category   string
		itemStatus string
		want       bool
	}{
		{CategoryExtinguisher, "Bad", true},
		{CategoryExtinguisher, "NeedsRecharge", false},
		{CategoryExtinguisher, "Good", false},
		{CategoryFirstAid, "DoesNotExist", true},
		{CategoryFirstAid, "Exists", false},
		{CategoryProcess, "Bad", true},
		{CategoryProcess, "Regular", false},
		{CategoryStorage, "Bad", true},
		{CategoryForklift, "No", false},
		{"Unknown", "Bad", false},
	}
	for _, tt := range tests {
		if got := Classify(tt.category, tt.itemStatus); got != tt.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tt.category, tt.itemStatus, got, tt.want)
		}
	}
}

func TestTemplateItems(t *testing.T) {
	items := TemplateItems(CategoryProcess, "INS-1")
	spec, _ := LookupCategory(CategoryProcess)
	if len(items) != len(spec.Template) {
		t.Fatalf("len(TemplateItems) = %d, want %d", len(items), len(spec.Template))
	}
	for i, item := range items {
		if item.InspectionID != "INS-1" {
			t.Errorf("items[%d].InspectionID = %q, want INS-1", i, item.InspectionID)
		}
		if item.ItemStatus != spec.DefaultStatus {
			t.Errorf("items[%d].ItemStatus = %q, want %q", i, item.ItemStatus, spec.DefaultStatus)
		}
		if item.Position != i {
			t.Errorf("items[%d].Position = %d, want %d", i, item.Position, i)
		}
	}
}

func TestTemplateItemsAdHocCategory(t *testing.T) {
	if items := TemplateItems(CategoryExtinguisher, "INS-1"); items != nil {
		t.Errorf("TemplateItems(Extinguisher) = %d items, want nil", len(items))
	}
}

func TestCategoriesAllRegistered(t *testing.T) {
	for _, category := range Categories() {
		spec, ok := LookupCategory(category)
		if !ok {
			t.Errorf("category %s has no spec", category)
			continue
		}
		if spec.Evidence == "" {
			t.Errorf("category %s has no evidence code", category)
		}
		if spec.DefaultStatus == "" {
			t.Errorf("category %s has no default status", category)
		}
		for _, failing := range spec.FailingStatuses {
			var member bool
			for _, v := range spec.StatusValues {
				if v == failing {
					member = true
				}
			}
			if !member {
				t.Errorf("category %s failing status %q not in status values %v", category, failing, spec.StatusValues)
			}
		}
	}
}

func TestNewIDPrefix(t *testing.T) {
	id := newID("INS")
	if !strings.HasPrefix(id, "INS-") {
		t.Errorf("newID = %q, want INS- prefix", id)
	}
	if id == newID("INS") {
		t.Error("newID returned the same value twice")
	}
}
