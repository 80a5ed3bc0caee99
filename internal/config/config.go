// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

const (
	defaultPollInterval    = time.Minute
	defaultListenAddr      = ":9312"
	defaultMaxPayloadBytes = 1 << 20
	defaultLogLevel        = "info"
)

// V3Auth holds SNMPv3 USM credentials
type V3Auth struct {
	User      string `yaml:"user"`
	AuthProto string `yaml:"auth_proto"` // MD5/SHA/SHA256...
	AuthPass  string `yaml:"auth_pass"`
	PrivProto string `yaml:"priv_proto"` // DES/AES...
	PrivPass  string `yaml:"priv_pass"`
}

// DeviceConfig is one FortiGate to poll
type DeviceConfig struct {
	Name      string  `yaml:"name"`
	Address   string  `yaml:"address"`
	Version   string  `yaml:"version"` // "v2c" (default) or "v3"
	Community string  `yaml:"community"`
	V3        *V3Auth `yaml:"v3"`
}

// AgentConfig for the polling agent
type AgentConfig struct {
	CollectorURL  string                        `yaml:"collector_url"`
	PollInterval  time.Duration                 `yaml:"poll_interval"`
	Hostname      string                        `yaml:"hostname"`
	TLSSkipVerify bool                          `yaml:"tls_skip_verify"`
	LogLevel      string                        `yaml:"log_level"`
	SpoolPath     string                        `yaml:"spool_path"` // unsent report, retried next cycle
	Devices       []DeviceConfig                `yaml:"devices"`
	Legacy        bool                          `yaml:"legacy"` // use the fixed legacy levels as default
	Params        *sdwan.ParameterSet           `yaml:"params"`
	ItemParams    map[string]sdwan.ParameterSet `yaml:"item_params"` // keyed by item id
	APIKey        string                        `yaml:"-"`           // from env only
}

// CollectorConfig for the central collector
type CollectorConfig struct {
	ListenAddr      string `yaml:"listen_addr"`
	DBPath          string `yaml:"db_path"`
	MaxPayloadBytes int64  `yaml:"max_payload_bytes"`
	TLSCert         string `yaml:"tls_cert"`
	TLSKey          string `yaml:"tls_key"`
	LogLevel        string `yaml:"log_level"`
	APIKey          string `yaml:"-"` // agent auth, from env
}

// LoadAgentConfig loads agent config from YAML file with env overrides
func LoadAgentConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AgentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Env overrides
	if key := os.Getenv("SDWANWATCH_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if hostname := os.Getenv("SDWANWATCH_HOSTNAME"); hostname != "" {
		cfg.Hostname = hostname
	}
	if community := os.Getenv("SDWANWATCH_COMMUNITY"); community != "" {
		for i := range cfg.Devices {
			if cfg.Devices[i].Community == "" {
				cfg.Devices[i].Community = community
			}
		}
	}

	if cfg.Hostname == "" {
		cfg.Hostname, _ = os.Hostname()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required agent settings
func (c *AgentConfig) Validate() error {
	if c.CollectorURL == "" {
		return errors.New("collector_url is required")
	}
	if len(c.Devices) == 0 {
		return errors.New("at least one device is required")
	}
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Address == "" {
			return fmt.Errorf("devices[%d]: address is required", i)
		}
		name := d.DisplayName()
		if seen[name] {
			return fmt.Errorf("devices[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		if d.Version == "v3" && (d.V3 == nil || d.V3.User == "") {
			return fmt.Errorf("devices[%d]: v3 requires v3.user", i)
		}
	}
	return nil
}

// DisplayName is the device name, falling back to its address
func (d DeviceConfig) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Address
}

// ParamsFor resolves the thresholds of one item: an item override wins,
// then the configured default, then the built-in (or legacy) defaults.
func (c *AgentConfig) ParamsFor(item string) sdwan.ParameterSet {
	if p, ok := c.ItemParams[item]; ok {
		return p
	}
	if c.Params != nil {
		return *c.Params
	}
	if c.Legacy {
		return sdwan.LegacyParameters()
	}
	return sdwan.DefaultParameters()
}

// LoadCollectorConfig loads collector config from YAML file with env overrides
func LoadCollectorConfig(path string) (*CollectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CollectorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if key := os.Getenv("SDWANWATCH_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = defaultMaxPayloadBytes
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path is required")
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, errors.New("tls_cert and tls_key must be set together")
	}

	return &cfg, nil
}

// LoadParameterSet reads a standalone YAML parameter file, as used by the check command
func LoadParameterSet(path string) (sdwan.ParameterSet, error) {
	var p sdwan.ParameterSet
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}
