package config

import "fmt"

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast).
func (v *Validator) ValidateAll() error {
	if err := v.validatePipeline(); err != nil {
		return fmt.Errorf("pipeline validation failed: %w", err)
	}
	if err := v.validateScheduler(); err != nil {
		return fmt.Errorf("scheduler validation failed: %w", err)
	}
	if err := v.validateDocketThresholds(); err != nil {
		return fmt.Errorf("docket threshold validation failed: %w", err)
	}
	if err := v.validateEntityThresholds(); err != nil {
		return fmt.Errorf("entity threshold validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validatePipeline() error {
	p := v.cfg.Pipeline
	if p.WorkerCount < 1 {
		return NewValidationError("pipeline", "worker_count", fmt.Errorf("must be at least 1, got %d", p.WorkerCount))
	}
	if p.PollInterval <= 0 {
		return NewValidationError("pipeline", "poll_interval", fmt.Errorf("must be positive"))
	}
	if p.PollIntervalJitter < 0 || p.PollIntervalJitter >= p.PollInterval {
		return NewValidationError("pipeline", "poll_interval_jitter", fmt.Errorf("must be non-negative and less than poll_interval"))
	}
	if p.OrphanThreshold <= 0 {
		return NewValidationError("pipeline", "orphan_threshold", fmt.Errorf("must be positive"))
	}
	if p.HeartbeatInterval <= 0 || p.HeartbeatInterval >= p.OrphanThreshold {
		return NewValidationError("pipeline", "heartbeat_interval", fmt.Errorf("must be positive and less than orphan_threshold"))
	}
	if p.MaxRetries < 0 {
		return NewValidationError("pipeline", "max_retries", fmt.Errorf("must be non-negative"))
	}
	return nil
}

func (v *Validator) validateScheduler() error {
	if v.cfg.Scheduler.CheckInterval <= 0 {
		return NewValidationError("scheduler", "check_interval", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *Validator) validateDocketThresholds() error {
	d := v.cfg.Docket
	if d.ConfidenceReview < 0 || d.ConfidenceReview > 100 {
		return NewValidationError("docket_thresholds", "confidence_review", fmt.Errorf("must be in [0,100]"))
	}
	if d.ConfidenceAccept < d.ConfidenceReview || d.ConfidenceAccept > 100 {
		return NewValidationError("docket_thresholds", "confidence_accept", fmt.Errorf("must be in [confidence_review,100]"))
	}
	if d.FuzzyReview < 0 || d.FuzzyAccept < d.FuzzyReview || d.FuzzyAccept > 100 {
		return NewValidationError("docket_thresholds", "fuzzy_accept", fmt.Errorf("must satisfy 0 <= fuzzy_review <= fuzzy_accept <= 100"))
	}
	return nil
}

func (v *Validator) validateEntityThresholds() error {
	e := v.cfg.Entity
	if e.UtilityFuzzyReview < 0 || e.UtilityFuzzyAccept < e.UtilityFuzzyReview || e.UtilityFuzzyAccept > 100 {
		return NewValidationError("entity_thresholds", "utility_fuzzy_accept", fmt.Errorf("must satisfy 0 <= review <= accept <= 100"))
	}
	if e.TopicFuzzyReview < 0 || e.TopicFuzzyAccept < e.TopicFuzzyReview || e.TopicFuzzyAccept > 100 {
		return NewValidationError("entity_thresholds", "topic_fuzzy_accept", fmt.Errorf("must satisfy 0 <= review <= accept <= 100"))
	}
	return nil
}
