package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

var (
	config     *TriageConfig
	configOnce sync.Once
	configErr  error
	configMu   sync.RWMutex
)

// Load loads the configuration from the specified YAML file once and caches
// it globally. Subsequent calls return the cached value.
func Load(configPath string) (*TriageConfig, error) {
	configOnce.Do(func() {
		cfg, err := Parse(configPath)
		if err != nil {
			configErr = err
			return
		}
		configMu.Lock()
		config = cfg
		configMu.Unlock()
	})
	if configErr != nil {
		return nil, configErr
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return config, nil
}

// Parse parses and validates the YAML config file without touching the
// global cache.
func Parse(configPath string) (*TriageConfig, error) {
	// Resolve symlinks to handle ConfigMap-style mounts.
	resolved, _ := filepath.EvalSymlinks(configPath)
	if resolved == "" {
		resolved = configPath
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
	}

	cfg := &TriageConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrConfiguration, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	observability.Infof("Config loaded: %d category rules, %d guardrail levels, top_k=%d",
		len(cfg.CategoryRules.Rules), len(cfg.Policy.Guardrails.Patterns), cfg.Retrieval.TopK)
	return cfg, nil
}

// Replace replaces the globally cached config. Safe for concurrent readers.
func Replace(newCfg *TriageConfig) {
	configMu.Lock()
	config = newCfg
	configErr = nil
	configMu.Unlock()
}

// Get returns the current configuration, or nil if none has been loaded.
func Get() *TriageConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}
