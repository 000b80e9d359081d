package engine

import (
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// ScheduleFilter narrows schedule item queries.
type ScheduleFilter struct {
	Year     int
	AreaID   string
	Category string
	Status   string
}

// InspectionFilter narrows inspection record queries.
type InspectionFilter struct {
	Year             int
	AreaID           string
	Category         string
	UnlinkedOnly     bool
	ExcludeFollowUps bool
}

// Store is the persistence interface the engine operates against. Every
// method returns *Error on failure. InTransaction runs fn against a store
// bound to one atomic transaction; returning a non-nil error rolls it
// back.
type Store interface {
	InTransaction(fn func(tx Store) error) error

	GetUser(id string) (*models.User, error)
	GetArea(id string) (*models.Area, error)
	GroupMembers(groupName string) ([]models.User, error)
	CategorySigners(category string) ([]models.User, error)

	GetScheduleItem(id string) (*models.ScheduleItem, error)
	CreateScheduleItem(item *models.ScheduleItem) error
	UpdateScheduleItem(item *models.ScheduleItem) error
	ScheduleItemExists(areaID, category string, date time.Time) (bool, error)
	ListScheduleItems(filter ScheduleFilter) ([]models.ScheduleItem, error)

	// GetInspection loads a record with its items and signatures.
	GetInspection(id string) (*models.InspectionRecord, error)
	// GetInspectionForUpdate is GetInspection with a row lock on the
	// record, so concurrent signers serialize on the last-signer check.
	GetInspectionForUpdate(id string) (*models.InspectionRecord, error)
	CreateInspection(record *models.InspectionRecord) error
	UpdateInspectionStatus(id, status string) error
	UpdateInspectionGeneralStatus(id, generalStatus string) error
	ListInspections(filter InspectionFilter) ([]models.InspectionRecord, error)
	ListChildren(parentID string) ([]models.InspectionRecord, error)

	CreateCheckItem(item *models.CheckItem) error
	UpdateCheckItem(item *models.CheckItem) error
	CreateSignature(sig *models.Signature) error
}

// Notifier is the notification sink. Fire-and-forget: implementations
// must not return delivery failures into the business transaction.
type Notifier interface {
	Notify(userIDs []string, title, message, link string)
}

// Config exposes typed system configuration, read-only to the engine.
type Config interface {
	Str(key, def string) string
	Int(key string, def int) int
	Bool(key string, def bool) bool
}

// TransitionEvent describes one lifecycle transition for the audit
// journal.
type TransitionEvent struct {
	InspectionID string    `json:"inspection_id"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	ActorID      string    `json:"actor_id"`
	Note         string    `json:"note,omitempty"`
	At           time.Time `json:"at"`
}

// Auditor records lifecycle transitions. Best-effort, like notifications:
// a journal failure never rolls back the transition that produced it.
type Auditor interface {
	RecordTransition(event TransitionEvent) error
}
