package exporter

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	defaultUpdatePeriod   = 30
	defaultPort           = 9825
	defaultJsonrpcAddress = "http://localhost:4467/"
)

type Config struct {
	// seconds between two collection cycles
	UpdatePeriod int `yaml:"update_period,omitempty"`
	// port of the prometheus exposition server
	Port int `yaml:"port,omitempty"`
	// base address of the validator's JSONRPC endpoint
	JsonrpcAddress string `yaml:"jsonrpc_address,omitempty"`
	// sample host cpu/memory/disk usage each cycle
	CollectSystemUsage bool `yaml:"collect_system_usage,omitempty"`
	// publish hbbft perf for every consensus member instead of self only
	AllHbbft bool `yaml:"all_hbbft,omitempty"`
	// collect the penalty ledger for all staked validators instead of
	// self only. This is a large collection, so plan accordingly.
	AllPenalties bool `yaml:"all_penalties,omitempty"`
}

func NewConfig() *Config {
	cfg := &Config{}
	cfg.validateValues()
	return cfg
}

// ConfigFromFile loads the optional yaml config and then applies the
// environment overrides. An empty path skips the file entirely.
func ConfigFromFile(yamlPath string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.Load(yamlPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (self *Config) Load(yamlPath string) error {
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, self); err != nil {
			return err
		}
	}
	if err := self.applyEnv(); err != nil {
		return err
	}
	return self.validateValues()
}

func (self *Config) applyEnv() error {
	if v, ok := os.LookupEnv("UPDATE_PERIOD"); ok {
		period, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse UPDATE_PERIOD")
		}
		self.UpdatePeriod = period
	}
	if v, ok := os.LookupEnv("MINER_EXPORTER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse MINER_EXPORTER_PORT")
		}
		self.Port = port
	}
	if v, ok := os.LookupEnv("VALIDATOR_JSONRPC_ADDRESS"); ok {
		self.JsonrpcAddress = v
	}
	if v, ok := os.LookupEnv("COLLECT_SYSTEM_USAGE"); ok {
		self.CollectSystemUsage = truthy(v)
	}
	if v, ok := os.LookupEnv("ALL_HBBFT"); ok {
		self.AllHbbft = truthy(v)
	}
	if v, ok := os.LookupEnv("ALL_PENALTIES"); ok {
		self.AllPenalties = truthy(v)
	}
	return nil
}

func (self *Config) validateValues() error {
	if self.UpdatePeriod == 0 {
		self.UpdatePeriod = defaultUpdatePeriod
	}
	if self.UpdatePeriod < 0 {
		return errors.New("update_period must be positive")
	}
	if self.Port == 0 {
		self.Port = defaultPort
	}
	if self.Port < 0 || self.Port > 65535 {
		return errors.New("invalid port")
	}
	if self.JsonrpcAddress == "" {
		self.JsonrpcAddress = defaultJsonrpcAddress
	}
	u, err := url.Parse(self.JsonrpcAddress)
	if err != nil {
		return errors.Wrap(err, "parse jsonrpc address")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("jsonrpc address must be a http or https url")
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "t", "1", "y", "yes":
		return true
	}
	return false
}
