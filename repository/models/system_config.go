package models

import (
	"strconv"
	"strings"
	"time"
)

// SystemConfig value types.
const (
	ConfigTypeString  = "string"
	ConfigTypeNumber  = "number"
	ConfigTypeBoolean = "boolean"
)

// Well-known configuration keys.
const (
	ConfigKeyFollowUpDays    = "dias_seguimiento_auto"
	ConfigKeyUpcomingWarning = "dias_aviso_programacion"
	ConfigKeyNotifyEnabled   = "notificaciones_activas"
	ConfigKeySupervisorGroup = "grupo_jefes"
)

// SystemConfig is one tunable key/value parameter. Read-only to the
// lifecycle engine.
type SystemConfig struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Key         string    `gorm:"column:key;type:varchar(100);uniqueIndex;not null"`
	Value       string    `gorm:"column:value;type:varchar(255);not null"`
	Description string    `gorm:"column:description;type:text"`
	ConfigType  string    `gorm:"column:config_type;type:varchar(20);default:'string'"`
	Category    string    `gorm:"column:category;type:varchar(50);default:'general'"`
	IsEditable  bool      `gorm:"column:is_editable;default:true"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IntValue parses the value as an integer, returning def on mismatch.
func (c *SystemConfig) IntValue(def int) int {
	f, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return def
	}
	return int(f)
}

// BoolValue parses the value as a boolean, returning def on mismatch.
func (c *SystemConfig) BoolValue(def bool) bool {
	switch strings.ToLower(c.Value) {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}
