/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml"
)

// Config represents the configuration of the forwarder.
type Config struct {
	Core struct {
		// Logging level
		LogLevel string `yaml:"log_level"`
		// Output log to file
		LogFile string `yaml:"log_file"`

		// Config file base dir
		BaseDir string `yaml:"-"`
		// Enable CPU profiling
		CpuProfile string `yaml:"-"`
		// Enable memory profiling
		MemProfile string `yaml:"-"`
		// Enable block profiling
		BlockProfile string `yaml:"-"`
	} `yaml:"core"`

	Faces struct {
		// Capacity of the channel between a face's send queue and its transport
		TxBuffer int `yaml:"tx_buffer"`
	} `yaml:"faces"`

	Fw struct {
		// Size of the forwarder's inbound packet queue
		QueueSize int `yaml:"queue_size"`
		// Interval between PIT expiry sweeps (in milliseconds)
		PitUpdateIntervalMs int `yaml:"pit_update_interval_ms"`
		// Strategy used where no strategy choice applies
		DefaultStrategy string `yaml:"default_strategy"`
		// Capacity of the Dead Nonce List
		DeadNonceListSize int `yaml:"dead_nonce_list_size"`
		// Lifetime of Dead Nonce List entries (in milliseconds)
		DeadNonceLifetimeMs int `yaml:"dead_nonce_lifetime_ms"`
	} `yaml:"fw"`

	Readvertise struct {
		// Minimum delay between advertise retries (in milliseconds)
		BackoffMinMs int `yaml:"backoff_min_ms"`
		// Maximum delay between advertise retries (in milliseconds)
		BackoffMaxMs int `yaml:"backoff_max_ms"`
		// Multiplier applied to the retry delay after each failure
		BackoffFactor float64 `yaml:"backoff_factor"`
		// Number of times a failed withdraw is retried before giving up
		WithdrawRetries int `yaml:"withdraw_retries"`

		NdnDpdk struct {
			// Whether to register announced prefixes on an NDN-DPDK forwarder
			Enabled bool `yaml:"enabled"`
			// GraphQL endpoint of the NDN-DPDK forwarder
			Uri string `yaml:"uri"`
			// Face on the NDN-DPDK forwarder that reaches this forwarder
			FaceID string `yaml:"face_id"`
		} `yaml:"ndndpdk"`
	} `yaml:"readvertise"`

	Monitor struct {
		// Whether to enable the WebSocket event monitor
		Enabled bool `yaml:"enabled"`
		// Bind address for the monitor listener
		Bind string `yaml:"bind"`
		// Port for the monitor listener
		Port uint16 `yaml:"port"`
	} `yaml:"monitor"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	c := &Config{}

	c.Core.LogLevel = "INFO"

	c.Faces.TxBuffer = 16

	c.Fw.QueueSize = 1024
	c.Fw.PitUpdateIntervalMs = 100
	c.Fw.DefaultStrategy = "multicast"
	c.Fw.DeadNonceListSize = 65536
	c.Fw.DeadNonceLifetimeMs = 6000

	c.Readvertise.BackoffMinMs = 1000
	c.Readvertise.BackoffMaxMs = 60000
	c.Readvertise.BackoffFactor = 2
	c.Readvertise.WithdrawRetries = 3

	c.Monitor.Bind = "127.0.0.1"
	c.Monitor.Port = 9696

	return c
}

// PitUpdateInterval returns the PIT expiry sweep interval.
func (c *Config) PitUpdateInterval() time.Duration {
	return time.Duration(c.Fw.PitUpdateIntervalMs) * time.Millisecond
}

// DeadNonceLifetime returns the lifetime of Dead Nonce List entries.
func (c *Config) DeadNonceLifetime() time.Duration {
	return time.Duration(c.Fw.DeadNonceLifetimeMs) * time.Millisecond
}

// LoadConfig loads the configuration file on top of the defaults.
// The format is chosen by file extension: TOML or YAML.
func LoadConfig(file string) (*Config, error) {
	c := DefaultConfig()
	c.Core.BaseDir = filepath.Dir(file)

	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		tree, err := toml.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("unable to load configuration file: %w", err)
		}
		c.applyToml(tree)
	case ".yml", ".yaml":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("unable to open configuration file: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f, yaml.Strict())
		if err = dec.Decode(c); err != nil {
			return nil, fmt.Errorf("unable to parse configuration file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrConfigFormat, file)
	}
	return c, nil
}

func (c *Config) applyToml(tree *toml.Tree) {
	c.Core.LogLevel = getTomlStringDefault(tree, "core.log_level", c.Core.LogLevel)
	c.Core.LogFile = getTomlStringDefault(tree, "core.log_file", c.Core.LogFile)

	c.Faces.TxBuffer = getTomlIntDefault(tree, "faces.tx_buffer", c.Faces.TxBuffer)

	c.Fw.QueueSize = getTomlIntDefault(tree, "fw.queue_size", c.Fw.QueueSize)
	c.Fw.PitUpdateIntervalMs = getTomlIntDefault(tree, "fw.pit_update_interval_ms", c.Fw.PitUpdateIntervalMs)
	c.Fw.DefaultStrategy = getTomlStringDefault(tree, "fw.default_strategy", c.Fw.DefaultStrategy)
	c.Fw.DeadNonceListSize = getTomlIntDefault(tree, "fw.dead_nonce_list_size", c.Fw.DeadNonceListSize)
	c.Fw.DeadNonceLifetimeMs = getTomlIntDefault(tree, "fw.dead_nonce_lifetime_ms", c.Fw.DeadNonceLifetimeMs)

	c.Readvertise.BackoffMinMs = getTomlIntDefault(tree, "readvertise.backoff_min_ms", c.Readvertise.BackoffMinMs)
	c.Readvertise.BackoffMaxMs = getTomlIntDefault(tree, "readvertise.backoff_max_ms", c.Readvertise.BackoffMaxMs)
	c.Readvertise.BackoffFactor = getTomlFloatDefault(tree, "readvertise.backoff_factor", c.Readvertise.BackoffFactor)
	c.Readvertise.WithdrawRetries = getTomlIntDefault(tree, "readvertise.withdraw_retries", c.Readvertise.WithdrawRetries)
	c.Readvertise.NdnDpdk.Enabled = getTomlBoolDefault(tree, "readvertise.ndndpdk.enabled", c.Readvertise.NdnDpdk.Enabled)
	c.Readvertise.NdnDpdk.Uri = getTomlStringDefault(tree, "readvertise.ndndpdk.uri", c.Readvertise.NdnDpdk.Uri)
	c.Readvertise.NdnDpdk.FaceID = getTomlStringDefault(tree, "readvertise.ndndpdk.face_id", c.Readvertise.NdnDpdk.FaceID)

	c.Monitor.Enabled = getTomlBoolDefault(tree, "monitor.enabled", c.Monitor.Enabled)
	c.Monitor.Bind = getTomlStringDefault(tree, "monitor.bind", c.Monitor.Bind)
	c.Monitor.Port = getTomlUint16Default(tree, "monitor.port", c.Monitor.Port)
}

func getTomlIntDefault(tree *toml.Tree, key string, def int) int {
	val, ok := tree.Get(key).(int64)
	if ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

func getTomlUint16Default(tree *toml.Tree, key string, def uint16) uint16 {
	val, ok := tree.Get(key).(int64)
	if ok && val > 0 && val <= math.MaxUint16 {
		return uint16(val)
	}
	return def
}

func getTomlFloatDefault(tree *toml.Tree, key string, def float64) float64 {
	switch val := tree.Get(key).(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	}
	return def
}

func getTomlStringDefault(tree *toml.Tree, key string, def string) string {
	if val, ok := tree.Get(key).(string); ok {
		return val
	}
	return def
}

func getTomlBoolDefault(tree *toml.Tree, key string, def bool) bool {
	if val, ok := tree.Get(key).(bool); ok {
		return val
	}
	return def
}
