package config

import "time"

// PipelineConfig controls the per-hearing orchestrator's worker pool (C8).
// These values mirror the teacher's queue config shape, but the domain
// default is one worker per process — §4.8 chooses single-writer-per-hearing
// simplicity and gets parallelism from running multiple pinned processes,
// not from a large in-process pool.
type PipelineConfig struct {
	// WorkerCount is the number of hearing-processing goroutines per process.
	WorkerCount int `yaml:"worker_count"`

	// PollInterval is the base interval between claim attempts when idle.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollIntervalJitter is random jitter added to PollInterval.
	PollIntervalJitter time.Duration `yaml:"poll_interval_jitter"`

	// StageTimeout bounds a single stage invocation (transcribe/analyze/
	// extract/finalize). Exceeding it is treated as a transient failure.
	StageTimeout time.Duration `yaml:"stage_timeout"`

	// GracefulShutdownTimeout is not read by the worker pool: Stop() waits
	// for in-flight hearings to finish with no time limit.
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	// OrphanDetectionInterval is how often the orphan sweep runs.
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`

	// OrphanThreshold is how long a hearing can sit in a transitional status,
	// measured from its updated_at, before its in-flight stage is considered
	// abandoned. No heartbeat refreshes updated_at while a stage runs.
	OrphanThreshold time.Duration `yaml:"orphan_threshold"`

	// HeartbeatInterval is only checked by the validator against
	// OrphanThreshold; workers send no heartbeat and Hearing has no
	// last_interaction_at field.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// MaxRetries bounds PipelineJob.retry_count before a hearing is moved
	// to the terminal error status.
	MaxRetries int `yaml:"max_retries"`

	// MaxCostPerRunUSD stops further stage dispatch within a single run once
	// accumulated cost exceeds this value (§4.8 step 6). Zero means no cap.
	MaxCostPerRunUSD float64 `yaml:"max_cost_per_run_usd"`

	// MaxHearingsPerRun is not read by the pipeline: RunOnce's hearing limit
	// comes from the triggering schedule's max_hearings config.
	MaxHearingsPerRun int `yaml:"max_hearings_per_run"`
}

// DefaultPipelineConfig returns the built-in pipeline defaults.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		WorkerCount:             1,
		PollInterval:            2 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		StageTimeout:            30 * time.Minute,
		GracefulShutdownTimeout: 5 * time.Minute,
		OrphanDetectionInterval: 5 * time.Minute,
		OrphanThreshold:         10 * time.Minute,
		HeartbeatInterval:       30 * time.Second,
		MaxRetries:              3,
		MaxCostPerRunUSD:        0,
		MaxHearingsPerRun:       0,
	}
}

// ScraperConfig controls the scraper orchestrator (C2).
type ScraperConfig struct {
	// RequestTimeout bounds a single adapter HTTP round-trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// UserAgent is sent on calendar/meeting adapter requests, which 403
	// without a browser-like value (§4.1).
	UserAgent string `yaml:"user_agent"`

	// MaxErrorsRemembered bounds progress().errors (§4.2: "last 20 errors").
	MaxErrorsRemembered int `yaml:"max_errors_remembered"`
}

// DefaultScraperConfig returns the built-in scraper defaults.
func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		RequestTimeout:      30 * time.Second,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		MaxErrorsRemembered: 20,
	}
}

// SchedulerConfig controls the scheduler daemon (C9).
type SchedulerConfig struct {
	// CheckInterval is how often due schedules are polled (§4.9 default 60s).
	CheckInterval time.Duration `yaml:"check_interval"`
}

// DefaultSchedulerConfig returns the built-in scheduler defaults.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		CheckInterval: 60 * time.Second,
	}
}
