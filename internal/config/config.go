// Package config loads and writes treefort configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default protected branch names. Destructive remote operations on these
// require explicit confirmation.
var defaultProtectedBranches = []string{"main", "master", "develop", "production", "staging"}

// Config is the full treefort configuration.
type Config struct {
	Git     GitConfig     `yaml:"git" mapstructure:"git"`
	Hosting HostingConfig `yaml:"hosting" mapstructure:"hosting"`
}

// GitConfig tunes the git command facade and guard rails.
type GitConfig struct {
	// Remote is the remote name used for fetch/push/pull (default: origin).
	Remote string `yaml:"remote" mapstructure:"remote"`

	// LocalTimeout bounds disk-only git commands.
	LocalTimeout time.Duration `yaml:"local_timeout" mapstructure:"local_timeout"`

	// NetworkTimeout bounds commands that may touch a remote.
	NetworkTimeout time.Duration `yaml:"network_timeout" mapstructure:"network_timeout"`

	// LockRetries is the number of retries on transient index/ref lock
	// contention; LockRetryDelay is the pause between attempts.
	LockRetries    int           `yaml:"lock_retries" mapstructure:"lock_retries"`
	LockRetryDelay time.Duration `yaml:"lock_retry_delay" mapstructure:"lock_retry_delay"`

	// ProtectedBranches require confirmation before force-push.
	ProtectedBranches []string `yaml:"protected_branches" mapstructure:"protected_branches"`
}

// HostingConfig selects and authenticates the hosting provider.
type HostingConfig struct {
	// Provider: "github", "gitlab", or "auto" (detect from remote URL).
	Provider string `yaml:"provider" mapstructure:"provider"`

	// BaseURL for self-hosted instances; empty for github.com / gitlab.com.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// TokenEnvVar overrides the token environment variable name.
	// Default: GITHUB_TOKEN for GitHub, GITLAB_TOKEN for GitLab.
	TokenEnvVar string `yaml:"token_env_var" mapstructure:"token_env_var"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Git: GitConfig{
			Remote:            "origin",
			LocalTimeout:      10 * time.Second,
			NetworkTimeout:    2 * time.Minute,
			LockRetries:       4,
			LockRetryDelay:    150 * time.Millisecond,
			ProtectedBranches: defaultProtectedBranches,
		},
		Hosting: HostingConfig{
			Provider: "auto",
		},
	}
}

// Load unmarshals the active viper configuration over the defaults.
// Viper is expected to have been initialized by the CLI (config file path,
// TREEFORT_* env bindings).
func Load() (Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Git.Remote == "" {
		cfg.Git.Remote = "origin"
	}
	if len(cfg.Git.ProtectedBranches) == 0 {
		cfg.Git.ProtectedBranches = defaultProtectedBranches
	}
	return cfg, nil
}

// Write marshals cfg as YAML to path, creating parent directories.
// Used by `treefort init`; the coordinator itself never writes config.
func Write(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// IsProtectedBranch reports whether branch is in the protected set.
func (g GitConfig) IsProtectedBranch(branch string) bool {
	for _, p := range g.ProtectedBranches {
		if branch == p {
			return true
		}
	}
	return false
}
