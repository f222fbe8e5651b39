package config

import "time"

// RetentionConfig controls data retention and cleanup behavior, grounded on
// the teacher's session-retention policy and generalized to hearings.
type RetentionConfig struct {
	// HearingTTL is the age past which a complete/error/skipped Hearing is
	// soft-deleted (deleted_at set).
	HearingTTL time.Duration `yaml:"hearing_ttl"`

	// CleanupInterval is how often the cleanup loop runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		HearingTTL:      365 * 24 * time.Hour,
		CleanupInterval: 12 * time.Hour,
	}
}
