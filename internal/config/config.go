// Package config loads and merges michimem's on-disk configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
)

// TTL holds TTL policy, in days, for the two finite-lifetime priority tiers.
type TTL struct {
	DiaryDays   int `json:"diary_days"`
	InsightDays int `json:"insight_days"`
}

// Tokens holds the token budgets used by the tiering pipeline.
type Tokens struct {
	L0Budget         int `json:"l0_budget"`
	L1Budget         int `json:"l1_budget"`
	CheckpointBudget int `json:"checkpoint_budget"`
}

// Compounding holds the cluster-size thresholds for synthesis.
type Compounding struct {
	DiaryThreshold   int `json:"diary_threshold"`
	InsightThreshold int `json:"insight_threshold"`
}

// Config is michimem's full runtime configuration.
type Config struct {
	DataDir     string      `json:"data_dir"`
	TTL         TTL         `json:"ttl"`
	Tokens      Tokens      `json:"tokens"`
	Compounding Compounding `json:"compounding"`
}

// Defaults returns the built-in configuration defaults.
func Defaults() Config {
	return Config{
		DataDir: defaultDataDir(),
		TTL: TTL{
			DiaryDays:   30,
			InsightDays: 90,
		},
		Tokens: Tokens{
			L0Budget:         200,
			L1Budget:         500,
			CheckpointBudget: 500,
		},
		Compounding: Compounding{
			DiaryThreshold:   5,
			InsightThreshold: 3,
		},
	}
}

func defaultDataDir() string {
	if d := os.Getenv("MICHIMEM_DATA_DIR"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".michimem")
}

// Load reads config.json from dataDir (or the default data dir when
// dataDir is empty), deep-merging it field-wise over Defaults. A missing
// config.json is not an error — the defaults are returned as-is. Unlike a
// naive struct replace, nested sections (ttl, tokens, compounding) are
// merged sub-field by sub-field: an override that sets only
// ttl.diary_days leaves ttl.insight_days at its default.
func Load(dataDir string) (Config, error) {
	cfg := Defaults()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	path := filepath.Join(cfg.DataDir, "config.json")
	if override := os.Getenv("MICHIMEM_CONFIG"); override != "" {
		path = override
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var override Config
	if err := json.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merge config: %w", err)
	}

	return cfg, nil
}

// Paths returns the well-known subpaths under a data directory.
type Paths struct {
	DBPath          string
	CheckpointsDir  string
	ArchiveDir      string
	ConfigPath      string
	MemoriesRootDir string
}

// ResolvePaths computes the persisted-state layout for a data directory and
// ensures the reserved memories/{diary,insights,knowledge,shared} tree
// exists at boot time.
func ResolvePaths(dataDir string) (Paths, error) {
	p := Paths{
		DBPath:          filepath.Join(dataDir, "index.db"),
		CheckpointsDir:  filepath.Join(dataDir, "checkpoints"),
		ArchiveDir:      filepath.Join(dataDir, "archive"),
		ConfigPath:      filepath.Join(dataDir, "config.json"),
		MemoriesRootDir: filepath.Join(dataDir, "memories"),
	}

	dirs := []string{
		p.CheckpointsDir,
		p.ArchiveDir,
		filepath.Join(p.MemoriesRootDir, "diary"),
		filepath.Join(p.MemoriesRootDir, "insights"),
		filepath.Join(p.MemoriesRootDir, "knowledge"),
		filepath.Join(p.MemoriesRootDir, "shared"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return p, fmt.Errorf("create %s: %w", d, err)
		}
	}

	return p, nil
}
