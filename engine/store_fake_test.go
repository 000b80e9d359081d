package engine

import (
	"fmt"
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// memStore is an in-memory Store for engine tests. Transactions are not
// simulated; the engine performs no writes before its validation gates,
// so a failed call leaves the fake untouched anyway.
type memStore struct {
	users           map[string]*models.User
	areas           map[string]*models.Area
	groups          map[string][]string
	categorySigners map[string][]string
	scheduleItems   map[string]*models.ScheduleItem
	inspections     map[string]*models.InspectionRecord
}

func newMemStore() *memStore {
	return &memStore{
		users:           make(map[string]*models.User),
		areas:           make(map[string]*models.Area),
		groups:          make(map[string][]string),
		categorySigners: make(map[string][]string),
		scheduleItems:   make(map[string]*models.ScheduleItem),
		inspections:     make(map[string]*models.InspectionRecord),
	}
}

func (s *memStore) InTransaction(fn func(tx Store) error) error {
	return fn(s)
}

func (s *memStore) GetUser(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (s *memStore) GetArea(id string) (*models.Area, error) {
	a, ok := s.areas[id]
	if !ok {
		return nil, fmt.Errorf("area %s not found", id)
	}
	return a, nil
}

func (s *memStore) GroupMembers(groupName string) ([]models.User, error) {
	var members []models.User
	for _, id := range s.groups[groupName] {
		if u, ok := s.users[id]; ok {
			members = append(members, *u)
		}
	}
	return members, nil
}

func (s *memStore) CategorySigners(category string) ([]models.User, error) {
	var signers []models.User
	for _, id := range s.categorySigners[category] {
		if u, ok := s.users[id]; ok {
			signers = append(signers, *u)
		}
	}
	return signers, nil
}

func (s *memStore) GetScheduleItem(id string) (*models.ScheduleItem, error) {
	item, ok := s.scheduleItems[id]
	if !ok {
		return nil, fmt.Errorf("schedule item %s not found", id)
	}
	return item, nil
}

func (s *memStore) CreateScheduleItem(item *models.ScheduleItem) error {
	s.scheduleItems[item.ID] = item
	return nil
}

func (s *memStore) UpdateScheduleItem(item *models.ScheduleItem) error {
	if _, ok := s.scheduleItems[item.ID]; !ok {
		return fmt.Errorf("schedule item %s not found", item.ID)
	}
	s.scheduleItems[item.ID] = item
	return nil
}

func (s *memStore) ScheduleItemExists(areaID, category string, date time.Time) (bool, error) {
	for _, item := range s.scheduleItems {
		if item.AreaID == areaID && item.Category == category && sameDate(item.ScheduledDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListScheduleItems(filter ScheduleFilter) ([]models.ScheduleItem, error) {
	var out []models.ScheduleItem
	for _, item := range s.scheduleItems {
		if filter.Year != 0 && item.Year != filter.Year {
			continue
		}
		if filter.AreaID != "" && item.AreaID != filter.AreaID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *memStore) GetInspection(id string) (*models.InspectionRecord, error) {
	record, ok := s.inspections[id]
	if !ok {
		return nil, fmt.Errorf("inspection %s not found", id)
	}
	return record, nil
}

func (s *memStore) GetInspectionForUpdate(id string) (*models.InspectionRecord, error) {
	return s.GetInspection(id)
}

func (s *memStore) CreateInspection(record *models.InspectionRecord) error {
	s.inspections[record.ID] = record
	return nil
}

func (s *memStore) UpdateInspectionStatus(id, status string) error {
	record, ok := s.inspections[id]
	if !ok {
		return fmt.Errorf("inspection %s not found", id)
	}
	record.Status = status
	return nil
}

func (s *memStore) UpdateInspectionGeneralStatus(id, generalStatus string) error {
	record, ok := s.inspections[id]
	if !ok {
		return fmt.Errorf("inspection %s not found", id)
	}
	record.GeneralStatus = generalStatus
	return nil
}

func (s *memStore) ListInspections(filter InspectionFilter) ([]models.InspectionRecord, error) {
	var out []models.InspectionRecord
	for _, record := range s.inspections {
		if filter.Year != 0 && record.InspectionDate.Year() != filter.Year {
			continue
		}
		if filter.AreaID != "" && record.AreaID != filter.AreaID {
			continue
		}
		if filter.Category != "" && record.Category != filter.Category {
			continue
		}
		if filter.UnlinkedOnly && record.ScheduleItemID != nil {
			continue
		}
		if filter.ExcludeFollowUps && record.ParentID != nil {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (s *memStore) ListChildren(parentID string) ([]models.InspectionRecord, error) {
	var out []models.InspectionRecord
	for _, record := range s.inspections {
		if record.ParentID != nil && *record.ParentID == parentID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (s *memStore) CreateCheckItem(item *models.CheckItem) error {
	record, ok := s.inspections[item.InspectionID]
	if !ok {
		return fmt.Errorf("inspection %s not found", item.InspectionID)
	}
	record.Items = append(record.Items, *item)
	return nil
}

func (s *memStore) UpdateCheckItem(item *models.CheckItem) error {
	record, ok := s.inspections[item.InspectionID]
	if !ok {
		return fmt.Errorf("inspection %s not found", item.InspectionID)
	}
	for i := range record.Items {
		if record.Items[i].ID == item.ID {
			record.Items[i] = *item
			return nil
		}
	}
	return fmt.Errorf("check item %s not found", item.ID)
}

func (s *memStore) CreateSignature(sig *models.Signature) error {
	record, ok := s.inspections[sig.InspectionID]
	if !ok {
		return fmt.Errorf("inspection %s not found", sig.InspectionID)
	}
	record.Signatures = append(record.Signatures, *sig)
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// memNotifier records dispatched notifications.
type sentNotice struct {
	userIDs []string
	title   string
	message string
	link    string
}

type memNotifier struct {
	sent []sentNotice
}

func (n *memNotifier) Notify(userIDs []string, title, message, link string) {
	n.sent = append(n.sent, sentNotice{userIDs: userIDs, title: title, message: message, link: link})
}

// memConfig serves typed config values from maps, falling back to the
// caller's defaults for unset keys.
type memConfig struct {
	strs  map[string]string
	ints  map[string]int
	bools map[string]bool
}

func newMemConfig() *memConfig {
	return &memConfig{
		strs:  make(map[string]string),
		ints:  make(map[string]int),
		bools: make(map[string]bool),
	}
}

func (c *memConfig) Str(key, def string) string {
	if v, ok := c.strs[key]; ok {
		return v
	}
	return def
}

func (c *memConfig) Int(key string, def int) int {
	if v, ok := c.ints[key]; ok {
		return v
	}
	return def
}

func (c *memConfig) Bool(key string, def bool) bool {
	if v, ok := c.bools[key]; ok {
		return v
	}
	return def
}

// memAuditor records journal events.
type memAuditor struct {
	events []TransitionEvent
}

func (a *memAuditor) RecordTransition(event TransitionEvent) error {
	a.events = append(a.events, event)
	return nil
}

// testFixture bundles the engine and its fakes with some seeded actors.
type testFixture struct {
	store    *memStore
	notifier *memNotifier
	config   *memConfig
	audit    *memAuditor
	engine   *Engine
	now      time.Time
}

func newFixture() *testFixture {
	f := &testFixture{
		store:    newMemStore(),
		notifier: &memNotifier{},
		config:   newMemConfig(),
		audit:    &memAuditor{},
		now:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.engine = New(f.store, f.notifier, f.config,
		WithAuditor(f.audit),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *testFixture) addUser(id, name, role, signature string) *models.User {
	u := &models.User{
		ID:               id,
		Email:            id + "@example.com",
		FullName:         name,
		RoleName:         role,
		DigitalSignature: signature,
		IsActive:         true,
	}
	f.store.users[id] = u
	return u
}

func (f *testFixture) addArea(id, name string) *models.Area {
	a := &models.Area{ID: id, Name: name}
	f.store.areas[id] = a
	return a
}
