package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SyncConfig holds synchronizing access layer configuration
type SyncConfig struct {
	// Read cache freshness window, seconds
	CacheTTL int `json:"cache_ttl"`

	// Remote read timeout, seconds. Reads past it fall back to the local mirror.
	RemoteTimeout int `json:"remote_timeout"`

	// Prefix used for job numbers whose type has no mapping in AppSettings
	DefaultJobPrefix string `json:"default_job_prefix"`

	// Backup payload version written into full-system backups
	BackupVersion string `json:"backup_version"`

	// Remote health check interval, seconds. 0 disables the background check.
	HealthCheckInterval int `json:"health_check_interval"`
}

// CacheTTLDuration returns the cache freshness window
func (c *SyncConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RemoteTimeoutDuration returns the remote read timeout
func (c *SyncConfig) RemoteTimeoutDuration() time.Duration {
	return time.Duration(c.RemoteTimeout) * time.Second
}

// LoadSyncConfig loads sync configuration from environment or file
func LoadSyncConfig() *SyncConfig {
	// Try to load from file first
	if configPath := os.Getenv("SYNC_CONFIG_PATH"); configPath != "" {
		if cfg, err := loadSyncConfigFromFile(configPath); err == nil {
			return cfg
		}
	}

	return DefaultSyncConfig()
}

// loadSyncConfigFromFile loads sync config from JSON file, filling unset values with defaults
func loadSyncConfigFromFile(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultSyncConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultSyncConfig returns the sync configuration from environment with defaults
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		CacheTTL:            getIntEnv("SYNC_CACHE_TTL", 30),
		RemoteTimeout:       getIntEnv("SYNC_REMOTE_TIMEOUT", 5),
		DefaultJobPrefix:    getEnv("SYNC_DEFAULT_JOB_PREFIX", "JOB"),
		BackupVersion:       getEnv("SYNC_BACKUP_VERSION", "2.0"),
		HealthCheckInterval: getIntEnv("SYNC_HEALTH_INTERVAL", 30),
	}
}

// Helper functions for environment variables

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
