package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/safetrack/safetrack/repository/models"
)

// PostgreSQL error codes as constants
const (
	// Class 23 — Integrity Constraint Violation
	PgErrForeignKeyViolation = "23503" // foreign_key_violation
	PgErrUniqueViolation     = "23505" // unique_violation
	PgErrCheckViolation      = "23514" // check_violation
	PgErrNotNullViolation    = "23502" // not_null_violation

	// Class 40 — Transaction Rollback
	PgErrTransactionRollback = "40000" // transaction_rollback
	PgErrSerializationFail   = "40001" // serialization_failure
	PgErrDeadlockDetected    = "40P01" // deadlock_detected

	// Class 08 — Connection Exception
	PgErrConnectionException = "08000" // connection_exception
	PgErrConnectionFailure   = "08006" // connection_failure
)

// RepositoryError represents an error in the repository layer.
type RepositoryError struct {
	Code    string
	Message string
	Detail  string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
}

// Repository owns the database handle and the seed/migration helpers.
type Repository struct {
	db *gorm.DB
}

func NewRepository() *Repository {
	return &Repository{}
}

// ConnectDB opens the Postgres connection, retrying while the database
// container comes up.
func (r *Repository) ConnectDB(dsn string) error {
	var lastErr error
	for i := 0; i < 10; i++ {
		db, err := gorm.Open(postgres.Open(dsn))
		if err != nil {
			lastErr = err
			log.Printf("Connection attempt %d failed: %v", i+1, err)
			time.Sleep(2 * time.Second)
			continue
		}
		r.db = db
		log.Println("Connected to Postgres")
		return nil
	}
	return fmt.Errorf("connecting to postgres: %w", lastErr)
}

// DB exposes the raw handle for query-only callers.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) Migrate() error {
	err := r.db.AutoMigrate(
		&models.User{},
		&models.RoleGrant{},
		&models.Area{},
		&models.ScheduleItem{},
		&models.InspectionRecord{},
		&models.CheckItem{},
		&models.Signature{},
		&models.CategorySigner{},
		&models.SystemConfig{},
		&models.Notification{},
		&models.NotificationGroup{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Println("Database migration completed successfully")
	return nil
}

// Seed loads the initial areas, users, notification groups and system
// configuration. Idempotent: skips when data already exists.
func (r *Repository) Seed() error {
	var userCount int64
	r.db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		log.Println("Seed data already exists, skipping...")
		return nil
	}

	log.Println("Seeding database with initial data...")

	users := []models.User{
		{ID: "USR-001", Email: "coordinator@safetrack.local", FullName: "Laura Mendez", RoleName: "Administrador", DigitalSignature: "c2lnbmF0dXJlLWxhdXJh", IsActive: true},
		{ID: "USR-002", Email: "sst.lead@safetrack.local", FullName: "Carlos Rojas", RoleName: models.RoleEquipoSST, DigitalSignature: "c2lnbmF0dXJlLWNhcmxvcw==", IsActive: true},
		{ID: "USR-003", Email: "brigade@safetrack.local", FullName: "Ana Torres", RoleName: models.RoleBrigadista, DigitalSignature: "c2lnbmF0dXJlLWFuYQ==", IsActive: true},
		{ID: "USR-004", Email: "copasst@safetrack.local", FullName: "Diego Pardo", RoleName: models.RoleCopasst, IsActive: true},
	}
	for _, user := range users {
		if err := r.db.Create(&user).Error; err != nil {
			log.Printf("Error creating user %s: %v", user.ID, err)
		}
	}

	areas := []models.Area{
		{ID: "AREA-001", Name: "Production Plant", IsActive: true},
		{ID: "AREA-002", Name: "Warehouse", IsActive: true},
		{ID: "AREA-003", Name: "Administrative Offices", IsActive: true},
		{ID: "AREA-004", Name: "Loading Dock", IsActive: true},
		{ID: "AREA-005", Name: "Chemical Storage", IsActive: true},
	}
	for _, area := range areas {
		if err := r.db.Create(&area).Error; err != nil {
			log.Printf("Error creating area %s: %v", area.ID, err)
		}
	}

	grants := []models.RoleGrant{
		{RoleName: models.RoleEquipoSST, Module: "inspections", Action: "create"},
		{RoleName: models.RoleEquipoSST, Module: "inspections", Action: "sign"},
		{RoleName: models.RoleEquipoSST, Module: "schedule", Action: "create"},
		{RoleName: models.RoleBrigadista, Module: "inspections", Action: "create"},
		{RoleName: models.RoleBrigadista, Module: "inspections", Action: "sign"},
		{RoleName: models.RoleCopasst, Module: "inspections", Action: "sign"},
	}
	for _, grant := range grants {
		if err := r.db.Create(&grant).Error; err != nil {
			log.Printf("Error creating role grant: %v", err)
		}
	}

	supervisors := models.NotificationGroup{ID: "GRP-001", Name: "Jefes", IsActive: true}
	if err := r.db.Create(&supervisors).Error; err != nil {
		log.Printf("Error creating notification group: %v", err)
	}
	if err := r.db.Model(&supervisors).Association("Users").Append(&users[0], &users[1]); err != nil {
		log.Printf("Error populating notification group: %v", err)
	}

	configs := []models.SystemConfig{
		{Key: models.ConfigKeyFollowUpDays, Value: "15", ConfigType: models.ConfigTypeNumber, Category: "inspecciones", Description: "Days until an auto-generated follow-up is due.", IsEditable: true},
		{Key: models.ConfigKeyUpcomingWarning, Value: "3", ConfigType: models.ConfigTypeNumber, Category: "notificaciones", Description: "Days ahead to warn about pending scheduled inspections.", IsEditable: true},
		{Key: models.ConfigKeyNotifyEnabled, Value: "true", ConfigType: models.ConfigTypeBoolean, Category: "general", Description: "Enables internal system notifications.", IsEditable: true},
		{Key: models.ConfigKeySupervisorGroup, Value: "Jefes", ConfigType: models.ConfigTypeString, Category: "notificaciones", Description: "Notification group alerted on closures with findings.", IsEditable: true},
	}
	for _, conf := range configs {
		if err := r.db.Create(&conf).Error; err != nil {
			log.Printf("Error creating config %s: %v", conf.Key, err)
		}
	}

	log.Println("Database seeding completed successfully")
	return nil
}

// mapError converts a gorm/pgx error into a RepositoryError.
func mapError(err error) *RepositoryError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &RepositoryError{
			Code:    "ENTITY_NOT_FOUND",
			Message: "Record does not exist",
			Detail:  err.Error(),
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &RepositoryError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Detail:  pgErr.Detail,
		}
	}
	return &RepositoryError{
		Code:    "DATABASE_ERROR",
		Message: "A database error occurred",
		Detail:  err.Error(),
	}
}
