package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safetrack/safetrack/engine"
	"github.com/safetrack/safetrack/repository/models"
)

// Store returns the engine persistence interface backed by this
// repository's database.
func (r *Repository) Store() engine.Store {
	return &gormStore{db: r.db}
}

// gormStore implements engine.Store over a gorm handle, which is either
// the root connection or one transaction.
type gormStore struct {
	db *gorm.DB
}

// InTransaction runs fn against a store bound to a single database
// transaction; any error rolls back everything fn persisted.
func (s *gormStore) InTransaction(fn func(tx engine.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", id).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (s *gormStore) GetArea(id string) (*models.Area, error) {
	var area models.Area
	if err := s.db.Where("area_id = ?", id).First(&area).Error; err != nil {
		return nil, mapError(err)
	}
	return &area, nil
}

func (s *gormStore) GroupMembers(groupName string) ([]models.User, error) {
	var group models.NotificationGroup
	err := s.db.Preload("Users").Where("name = ? AND is_active = ?", groupName, true).First(&group).Error
	if err != nil {
		return nil, mapError(err)
	}
	return group.Users, nil
}

func (s *gormStore) CategorySigners(category string) ([]models.User, error) {
	var signers []models.CategorySigner
	err := s.db.Preload("User").Where("category = ?", category).Find(&signers).Error
	if err != nil {
		return nil, mapError(err)
	}
	users := make([]models.User, 0, len(signers))
	for _, signer := range signers {
		if signer.User != nil {
			users = append(users, *signer.User)
		}
	}
	return users, nil
}

func (s *gormStore) GetScheduleItem(id string) (*models.ScheduleItem, error) {
	var item models.ScheduleItem
	err := s.db.Preload("Area").Preload("Responsible").Where("schedule_id = ?", id).First(&item).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (s *gormStore) CreateScheduleItem(item *models.ScheduleItem) error {
	if err := s.db.Create(item).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) UpdateScheduleItem(item *models.ScheduleItem) error {
	if err := s.db.Save(item).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) ScheduleItemExists(areaID, category string, date time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.ScheduleItem{}).
		Where("area_id = ? AND category = ? AND scheduled_date = ?", areaID, category, date).
		Count(&count).Error
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

func (s *gormStore) ListScheduleItems(filter engine.ScheduleFilter) ([]models.ScheduleItem, error) {
	query := s.db.Preload("Responsible").Order("scheduled_date")
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.AreaID != "" {
		query = query.Where("area_id = ?", filter.AreaID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var items []models.ScheduleItem
	if err := query.Find(&items).Error; err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (s *gormStore) GetInspection(id string) (*models.InspectionRecord, error) {
	var record models.InspectionRecord
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Signatures").
		Preload("FollowUps").
		Where("inspection_id = ?", id).First(&record).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &record, nil
}

// GetInspectionForUpdate locks the inspection row before loading it, so
// two concurrent signers serialize and only one performs the closing
// transition.
func (s *gormStore) GetInspectionForUpdate(id string) (*models.InspectionRecord, error) {
	var locked models.InspectionRecord
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("inspection_id = ?", id).First(&locked).Error
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetInspection(id)
}

func (s *gormStore) CreateInspection(record *models.InspectionRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) UpdateInspectionStatus(id, status string) error {
	err := s.db.Model(&models.InspectionRecord{}).
		Where("inspection_id = ?", id).
		Update("status", status).Error
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) UpdateInspectionGeneralStatus(id, generalStatus string) error {
	err := s.db.Model(&models.InspectionRecord{}).
		Where("inspection_id = ?", id).
		Update("general_status", generalStatus).Error
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) ListInspections(filter engine.InspectionFilter) ([]models.InspectionRecord, error) {
	query := s.db.Order("inspection_date DESC")
	if filter.Year != 0 {
		query = query.Where("EXTRACT(YEAR FROM inspection_date) = ?", filter.Year)
	}
	if filter.AreaID != "" {
		query = query.Where("area_id = ?", filter.AreaID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UnlinkedOnly {
		query = query.Where("schedule_id IS NULL")
	}
	if filter.ExcludeFollowUps {
		query = query.Where("parent_id IS NULL")
	}
	var records []models.InspectionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

func (s *gormStore) ListChildren(parentID string) ([]models.InspectionRecord, error) {
	var children []models.InspectionRecord
	if err := s.db.Where("parent_id = ?", parentID).Find(&children).Error; err != nil {
		return nil, mapError(err)
	}
	return children, nil
}

func (s *gormStore) CreateCheckItem(item *models.CheckItem) error {
	if err := s.db.Create(item).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) UpdateCheckItem(item *models.CheckItem) error {
	if err := s.db.Save(item).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *gormStore) CreateSignature(sig *models.Signature) error {
	if err := s.db.Create(sig).Error; err != nil {
		return mapError(err)
	}
	return nil
}
