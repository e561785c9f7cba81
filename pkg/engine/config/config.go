// Package config provides config structure for the engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	gostrings "strings"

	"gopkg.in/yaml.v2"

	"github.com/polywrap/near-engine/pkg/collection/strings"
)

var (
	logLevels             = []string{"debug", "info", "warning", "error"}
	rpcModes              = []string{ModeHTTP, ModeWS}
	defaultPort           = 7887
	defaultRateLimit      = 100
	defaultRequestTimeout = 5000
	defaultMaxRequestSize = 4 * 1024 * 1024
	defaultHistoryCap     = 1000
)

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
)

type Config struct {
	System  *SystemConfig  `json:"system" yaml:"system"`
	RPC     *RPCConfig     `json:"rpc" yaml:"rpc"`
	Codec   *CodecConfig   `json:"codec" yaml:"codec"`
	History *HistoryConfig `json:"history" yaml:"history"`
}

// Load reads config from path. Files ending with .yaml or .yml are parsed as YAML, others as JSON.
// Defaults are inserted and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := config.InsertDefault(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns config with every default value.
func Default() *Config {
	config := &Config{}
	// defaults never fail
	_ = config.InsertDefault()
	return config
}

func intPtr(v int) *int {
	return &v
}

func (c *Config) InsertDefault() error {
	if c.System == nil {
		c.System = &SystemConfig{}
	}
	if err := c.System.InsertDefault(); err != nil {
		return err
	}
	if c.RPC == nil {
		c.RPC = &RPCConfig{}
	}
	if err := c.RPC.InsertDefault(); err != nil {
		return err
	}
	if c.Codec == nil {
		c.Codec = &CodecConfig{}
	}
	if c.History == nil {
		c.History = &HistoryConfig{}
	}
	if c.History.Capacity == 0 {
		c.History.Capacity = defaultHistoryCap
	}
	return nil
}

func (c *Config) Merge(config *Config) {
	if config.System != nil {
		c.System.Merge(config.System)
	}
	if config.RPC != nil {
		if c.RPC == nil {
			c.RPC = config.RPC
		} else {
			c.RPC.Merge(config.RPC)
		}
	}
	if config.Codec != nil {
		c.Codec = config.Codec
	}
	if config.History != nil {
		c.History = config.History
	}
}

func (c *Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return err
	}
	if err := c.RPC.Validate(); err != nil {
		return err
	}
	if c.History != nil && c.History.Capacity < 0 {
		return fmt.Errorf("invalid history capacity %d", c.History.Capacity)
	}
	return nil
}

type RPCConfig struct {
	Modes []string `json:"modes" yaml:"modes"`
	Port  int      `json:"port" yaml:"port"`
	Host  string   `json:"host" yaml:"host"`
	// RateLimit is the number of HTTP requests served per second.
	RateLimit *int `json:"rateLimit" yaml:"rateLimit"`
	// RequestTimeout in milliseconds.
	RequestTimeout int `json:"requestTimeout" yaml:"requestTimeout"`
	MaxRequestSize int `json:"maxRequestSize" yaml:"maxRequestSize"`
}

func (c *RPCConfig) InsertDefault() error {
	if c.Modes == nil {
		c.Modes = []string{ModeHTTP, ModeWS}
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.RateLimit == nil {
		c.RateLimit = intPtr(defaultRateLimit)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = defaultMaxRequestSize
	}
	return nil
}

func (c *RPCConfig) Merge(config *RPCConfig) {
	if config.Host != "" {
		c.Host = config.Host
	}
	if config.Port != 0 {
		c.Port = config.Port
	}
	if config.Modes != nil {
		c.Modes = config.Modes
	}
	if config.RateLimit != nil {
		c.RateLimit = config.RateLimit
	}
}

// GetRateLimit returns requests per second. Zero or negative disables the limit.
func (c RPCConfig) GetRateLimit() int {
	if c.RateLimit != nil {
		return *c.RateLimit
	}
	return defaultRateLimit
}

func (c RPCConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c RPCConfig) Enabled(mode string) bool {
	return strings.Contain(c.Modes, mode)
}

func (c *RPCConfig) Validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d for RPC is specified", c.Port)
	}
	for _, mode := range c.Modes {
		if !strings.Contain(rpcModes, mode) {
			return fmt.Errorf("rpc mode %s is not supported", mode)
		}
	}
	if !strings.IsUnique(c.Modes) {
		return fmt.Errorf("rpc modes %v must be unique", c.Modes)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout %d", c.RequestTimeout)
	}
	if c.MaxRequestSize < 0 {
		return fmt.Errorf("invalid max request size %d", c.MaxRequestSize)
	}
	return nil
}

type SystemConfig struct {
	Version  string `json:"version" yaml:"version"`
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

func (c *SystemConfig) InsertDefault() error {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

func (c *SystemConfig) Merge(config *SystemConfig) {
	if config.Version != "" {
		c.Version = config.Version
	}
	if config.LogLevel != "" {
		c.LogLevel = config.LogLevel
	}
}

func (c SystemConfig) Validate() error {
	if !strings.Contain(logLevels, c.LogLevel) {
		return fmt.Errorf("log level %s is not allowed", c.LogLevel)
	}
	return nil
}

// CodecConfig holds decode policy.
type CodecConfig struct {
	// AllowTrailingBytes accepts input with bytes left after the transaction.
	AllowTrailingBytes bool `json:"allowTrailingBytes" yaml:"allowTrailingBytes"`
}

// HistoryConfig controls the store of recently decoded transactions.
type HistoryConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// DataPath of the database. Empty keeps the history in memory.
	DataPath string `json:"dataPath" yaml:"dataPath"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// ResolvedDataPath returns DataPath with ~ replaced by the home directory.
func (c HistoryConfig) ResolvedDataPath() (string, error) {
	if !gostrings.HasPrefix(c.DataPath, "~") {
		return c.DataPath, nil
	}
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homedir, c.DataPath[1:]), nil
}
