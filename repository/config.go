package repository

import (
	"github.com/safetrack/safetrack/repository/models"
)

// Config returns the typed system configuration reader.
func (r *Repository) Config() *DBConfig {
	return &DBConfig{repo: r}
}

// DBConfig implements engine.Config over the system_configs table.
// Missing or malformed keys fall back to the caller's default.
type DBConfig struct {
	repo *Repository
}

func (c *DBConfig) get(key string) (*models.SystemConfig, bool) {
	var conf models.SystemConfig
	if err := c.repo.db.Where("key = ?", key).First(&conf).Error; err != nil {
		return nil, false
	}
	return &conf, true
}

func (c *DBConfig) Str(key, def string) string {
	conf, ok := c.get(key)
	if !ok {
		return def
	}
	return conf.Value
}

func (c *DBConfig) Int(key string, def int) int {
	conf, ok := c.get(key)
	if !ok {
		return def
	}
	return conf.IntValue(def)
}

func (c *DBConfig) Bool(key string, def bool) bool {
	conf, ok := c.get(key)
	if !ok {
		return def
	}
	return conf.BoolValue(def)
}
