package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// canaryscopeYAMLConfig represents canaryscope.yaml's structure: the
// ambient runtime tuning knobs. Credentials and model selection live in
// providers.yaml instead, mirroring the teacher's split between
// tarsy.yaml and llm-providers.yaml.
type canaryscopeYAMLConfig struct {
	Pipeline  *PipelineConfig   `yaml:"pipeline"`
	Scraper   *ScraperConfig    `yaml:"scraper"`
	Scheduler *SchedulerConfig  `yaml:"scheduler"`
	Retention *RetentionConfig  `yaml:"retention"`
	Docket    *DocketThresholds `yaml:"docket_thresholds"`
	Entity    *EntityThresholds `yaml:"entity_thresholds"`
}

// providersYAMLConfig represents providers.yaml's structure.
type providersYAMLConfig struct {
	Providers *ProvidersConfig `yaml:"providers"`
}

// Initialize loads, merges, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load canaryscope.yaml and providers.yaml from configDir
//  2. Expand environment variables
//  3. Merge user values over built-in defaults
//  4. Validate the merged result
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("component", "config", "config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized",
		"worker_count", cfg.Pipeline.WorkerCount,
		"check_interval", cfg.Scheduler.CheckInterval)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	var userCfg canaryscopeYAMLConfig
	if err := loader.loadYAML("canaryscope.yaml", &userCfg); err != nil {
		return nil, NewLoadError("canaryscope.yaml", err)
	}

	var userProviders providersYAMLConfig
	if err := loader.loadYAML("providers.yaml", &userProviders); err != nil {
		return nil, NewLoadError("providers.yaml", err)
	}

	pipeline := DefaultPipelineConfig()
	if userCfg.Pipeline != nil {
		if err := mergo.Merge(pipeline, userCfg.Pipeline, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge pipeline config: %w", err)
		}
	}

	scraper := DefaultScraperConfig()
	if userCfg.Scraper != nil {
		if err := mergo.Merge(scraper, userCfg.Scraper, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge scraper config: %w", err)
		}
	}

	scheduler := DefaultSchedulerConfig()
	if userCfg.Scheduler != nil {
		if err := mergo.Merge(scheduler, userCfg.Scheduler, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge scheduler config: %w", err)
		}
	}

	retention := DefaultRetentionConfig()
	if userCfg.Retention != nil {
		if err := mergo.Merge(retention, userCfg.Retention, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge retention config: %w", err)
		}
	}

	docket := DefaultDocketThresholds()
	if userCfg.Docket != nil {
		if err := mergo.Merge(docket, userCfg.Docket, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge docket thresholds: %w", err)
		}
	}

	entity := DefaultEntityThresholds()
	if userCfg.Entity != nil {
		if err := mergo.Merge(entity, userCfg.Entity, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge entity thresholds: %w", err)
		}
	}

	providers := DefaultProvidersConfig()
	if userProviders.Providers != nil {
		if err := mergo.Merge(providers, userProviders.Providers, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge providers config: %w", err)
		}
	}

	return &Config{
		configDir: configDir,
		Pipeline:  pipeline,
		Scraper:   scraper,
		Scheduler: scheduler,
		Retention: retention,
		Docket:    docket,
		Entity:    entity,
		Providers: providers,
	}, nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Both files are optional: every field has a built-in default.
			return nil
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}
