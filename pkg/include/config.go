package include

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config contains all configuration options for the include engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// MaxDepth is the maximum number of nested include or template frames.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// DirectiveNames are accepted both as [[Name(...)]] and as #!Name.
	DirectiveNames []string `yaml:"directive_names" json:"directive_names"`
	// NativeType is the content type of wiki markup.
	NativeType string `yaml:"native_type" json:"native_type"`
	// CacheMaxSize is the maximum number of parsed templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size" json:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	// RemoteTimeout bounds a single remote fetch.
	RemoteTimeout time.Duration `yaml:"remote_timeout" json:"remote_timeout"`
	// RemoteMaxBytes caps the size of a remote body.
	RemoteMaxBytes int64 `yaml:"remote_max_bytes" json:"remote_max_bytes"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

var directiveNamePattern = regexp.MustCompile(`^\w+$`)

func loadGlobalConfig() {
	configOnce.Do(func() {
		cfg := ConfigFromEnvironment()
		globalConfigMutex.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		MaxDepth:       32,
		DirectiveNames: []string{"Include", "Template"},
		NativeType:     "text/x-wiki",
		CacheMaxSize:   256,
		CacheTTL:       0,
		RemoteTimeout:  10 * time.Second,
		RemoteMaxBytes: 1 << 20,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("INCLUDE_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv("INCLUDE_MAX_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxDepth = depth
		}
	}

	// INCLUDE_DIRECTIVES is a comma separated list, e.g. "Include,Template,Macro"
	if val := os.Getenv("INCLUDE_DIRECTIVES"); val != "" {
		var names []string
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			config.DirectiveNames = names
		}
	}

	if val := os.Getenv("INCLUDE_NATIVE_TYPE"); val != "" {
		config.NativeType = val
	}

	if val := os.Getenv("INCLUDE_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	if val := os.Getenv("INCLUDE_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	if val := os.Getenv("INCLUDE_REMOTE_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.RemoteTimeout = duration
		}
	}

	if val := os.Getenv("INCLUDE_REMOTE_MAX_BYTES"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.RemoteMaxBytes = size
		}
	}

	return config
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides
	config.DirectiveNames = append([]string(nil), overrides.DirectiveNames...)

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = defaults.MaxDepth
	}
	if len(config.DirectiveNames) == 0 {
		config.DirectiveNames = defaults.DirectiveNames
	}
	if config.NativeType == "" {
		config.NativeType = defaults.NativeType
	}
	if config.RemoteTimeout == 0 {
		config.RemoteTimeout = defaults.RemoteTimeout
	}
	if config.RemoteMaxBytes == 0 {
		config.RemoteMaxBytes = defaults.RemoteMaxBytes
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	errs := NewMultiError()

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLogLevels[c.LogLevel] {
		errs.Add(errors.New("invalid log level: " + c.LogLevel))
	}

	if c.MaxDepth <= 0 {
		errs.Add(errors.New("max depth must be positive"))
	}

	if len(c.DirectiveNames) == 0 {
		errs.Add(errors.New("at least one directive name is required"))
	}
	for _, name := range c.DirectiveNames {
		if !directiveNamePattern.MatchString(name) {
			errs.Add(fmt.Errorf("invalid directive name: %q", name))
		}
	}

	if c.NativeType == "" {
		errs.Add(errors.New("native type cannot be empty"))
	}

	if c.CacheMaxSize < 0 {
		errs.Add(errors.New("cache max size cannot be negative"))
	}

	if c.CacheTTL < 0 {
		errs.Add(errors.New("cache TTL cannot be negative"))
	}

	if c.RemoteTimeout < 0 {
		errs.Add(errors.New("remote timeout cannot be negative"))
	}

	if c.RemoteMaxBytes < 0 {
		errs.Add(errors.New("remote max bytes cannot be negative"))
	}

	return errs.Err()
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	configCopy.DirectiveNames = append([]string(nil), globalConfig.DirectiveNames...)
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back.
	UpdateLoggerFromConfig()
}
