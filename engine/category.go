package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/safetrack/safetrack/repository/models"
)

// Inspection categories. The set is extensible: categories are plain
// strings, behavior is looked up in the dispatch table below.
const (
	CategoryExtinguisher = "Extinguisher"
	CategoryFirstAid     = "FirstAid"
	CategoryProcess      = "Process"
	CategoryStorage      = "Storage"
	CategoryForklift     = "Forklift"
)

// CategorySpec describes the per-category behavior of the engine:
// allowed item status values, which of them count as findings, the status
// assigned to items copied into a follow-up, and the standard checklist
// for template-driven categories (nil for ad hoc ones).
type CategorySpec struct {
	Name            string
	DisplayName     string
	Evidence        string
	StatusValues    []string
	DefaultStatus   string
	FailingStatuses []string
	FailingMarker   string
	Template        []string
}

// IsTemplateDriven reports whether records of this category are created
// with the standard checklist pre-populated.
func (s CategorySpec) IsTemplateDriven() bool {
	return len(s.Template) > 0
}

// IsFailing reports whether the given item status is a finding for this
// category.
func (s CategorySpec) IsFailing(itemStatus string) bool {
	for _, v := range s.FailingStatuses {
		if v == itemStatus {
			return true
		}
	}
	return false
}

var categorySpecs = map[string]CategorySpec{
	CategoryExtinguisher: {
		Name:            CategoryExtinguisher,
		DisplayName:     "Extinguishers",
		Evidence:        "R-RH-SST-019",
		StatusValues:    []string{"Good", "Bad", "NeedsRecharge"},
		DefaultStatus:   "Good",
		FailingStatuses: []string{"Bad"},
		FailingMarker:   "Bad",
	},
	CategoryFirstAid: {
		Name:            CategoryFirstAid,
		DisplayName:     "First Aid Kits",
		Evidence:        "R-RH-SST-020",
		StatusValues:    []string{"Exists", "DoesNotExist"},
		DefaultStatus:   "Exists",
		FailingStatuses: []string{"DoesNotExist"},
		FailingMarker:   "DoesNotExist",
	},
	CategoryProcess: {
		Name:            CategoryProcess,
		DisplayName:     "Process Facilities",
		Evidence:        "R-RH-SST-030",
		StatusValues:    []string{"Good", "Regular", "Bad", "NA"},
		DefaultStatus:   "Good",
		FailingStatuses: []string{"Bad"},
		FailingMarker:   "Bad",
		Template:        processTemplate,
	},
	CategoryStorage: {
		Name:            CategoryStorage,
		DisplayName:     "Storage Areas",
		Evidence:        "R-RH-SST-031",
		StatusValues:    []string{"Good", "Regular", "Bad", "NA"},
		DefaultStatus:   "Good",
		FailingStatuses: []string{"Bad"},
		FailingMarker:   "Bad",
		Template:        storageTemplate,
	},
	// Forklift items carry a yes/no/NA response with no pass/fail
	// classification; defects surface through the record's general
	// status, which is the only route to a closure with findings here.
	CategoryForklift: {
		Name:          CategoryForklift,
		DisplayName:   "Forklifts",
		Evidence:      "R-RH-SST-022",
		StatusValues:  []string{"Yes", "No", "NA"},
		DefaultStatus: "Yes",
		Template:      forkliftTemplate,
	},
}

var processTemplate = []string{
	"Work surfaces are clean and free of spills",
	"Walkways and exits are unobstructed",
	"Machine guards are in place and undamaged",
	"Emergency stop devices are accessible and functional",
	"Electrical panels are closed and labeled",
	"No exposed or damaged wiring is present",
	"Compressed air lines show no leaks or wear",
	"Chemical containers are labeled and sealed",
	"Safety data sheets are available at the workstation",
	"Personal protective equipment is in use and in good condition",
	"Lighting levels are adequate for the task",
	"Ventilation or extraction systems are operating",
	"Fire extinguishers in the area are accessible",
	"Emergency signage is visible and legible",
	"Tools are stored in their designated place",
	"Lifting equipment shows no visible damage",
	"Waste containers are not overflowing and are segregated",
	"Operators know the area's emergency procedure",
}

var storageTemplate = []string{
	"Racks and shelving are anchored and undamaged",
	"Load capacity limits are posted on racks",
	"Heavy items are stored on lower levels",
	"Stacked material is stable and within height limits",
	"Aisles meet minimum width and are unobstructed",
	"Pallets are in good condition",
	"Flammable materials are stored in designated cabinets",
	"Incompatible chemicals are segregated",
	"Containers are closed and labeled",
	"Spill containment is in place where required",
	"Fire sprinkler heads have required clearance",
	"Extinguishers and hydrants are unobstructed",
	"Emergency exits are marked and clear",
	"Lighting in storage aisles is functional",
	"Ladders and access equipment are in good condition",
	"Floor surfaces are free of damage and slip hazards",
}

var forkliftTemplate = []string{
	"Tires show adequate tread and no major damage",
	"Forks are free of cracks and not bent",
	"Mast chains are lubricated and undamaged",
	"Hydraulic system shows no leaks",
	"Service brake responds correctly",
	"Parking brake holds on incline",
	"Steering responds without excessive play",
	"Horn is audible",
	"Reverse alarm sounds in reverse",
	"Headlights and rear lights work",
	"Seatbelt is present and functional",
	"Overhead guard is undamaged",
	"Rearview mirrors are intact and adjusted",
	"Battery or fuel level is adequate",
	"No fluid leaks under the unit",
	"Capacity plate is legible",
	"Operator cabin is clean and free of loose objects",
	"Fire extinguisher on unit is charged",
	"Hour meter is functional",
	"Operator carries a valid certification",
}

// LookupCategory returns the spec for a category.
func LookupCategory(category string) (CategorySpec, bool) {
	spec, ok := categorySpecs[category]
	return spec, ok
}

// Categories returns the registered category names in display order.
func Categories() []string {
	return []string{
		CategoryExtinguisher,
		CategoryFirstAid,
		CategoryProcess,
		CategoryStorage,
		CategoryForklift,
	}
}

// Classify reports whether an item status is a finding for the category.
// Unknown categories classify nothing as failing.
func Classify(category, itemStatus string) bool {
	spec, ok := categorySpecs[category]
	if !ok {
		return false
	}
	return spec.IsFailing(itemStatus)
}

// TemplateItems builds the standard checklist for a template-driven
// category, in order, with the category's default status. Returns nil for
// ad hoc categories.
func TemplateItems(category, inspectionID string) []models.CheckItem {
	spec, ok := categorySpecs[category]
	if !ok || !spec.IsTemplateDriven() {
		return nil
	}
	items := make([]models.CheckItem, 0, len(spec.Template))
	for i, question := range spec.Template {
		items = append(items, models.CheckItem{
			ID:           newID("CHK"),
			InspectionID: inspectionID,
			Label:        question,
			ItemStatus:   spec.DefaultStatus,
			Position:     i,
		})
	}
	return items
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
