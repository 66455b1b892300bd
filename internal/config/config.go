package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "lighthouse_config.txt"

// Config holds all application configuration values.
type Config struct {
	// OSC output
	OSCIP               string
	OSCPort             int
	OSCMaxPacketSize    int  // bytes per datagram
	OSCIndexedAddresses bool // /controller/1, /tracker/2 instead of bare addresses

	// Sampling
	DeviceFilter    int    // -1 = all devices
	CycleIntervalMS int    // pause between sweeps, milliseconds
	Runtime         string // tracking runtime; "simulated" is built in
	LogDebug        bool

	// MQTT mirror; disabled when MQTTBroker is empty
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	// MQTTPublishIntervalMS is the minimum gap between mirrored frames.
	MQTTPublishIntervalMS int

	// Web Server
	WebServerPort int

	// OSC console
	OSCListenAddr string
}

// Package-level unexported variables for the singleton:
//   - globalConfig is only set by InitGlobal and read through Get.
//   - configOnce makes InitGlobal run once.
//   - configMu guards globalConfig.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		OSCIP:                 "127.0.0.1",
		OSCPort:               9999,
		OSCMaxPacketSize:      2048,
		DeviceFilter:          -1,
		CycleIntervalMS:       2,
		Runtime:               "simulated",
		MQTTClientID:          "lighthouse",
		MQTTTopicPrefix:       "lighthouse",
		MQTTPublishIntervalMS: 50,
		WebServerPort:         8080,
		OSCListenAddr:         "127.0.0.1:9999",
	}
}

// Load reads the configuration file and returns a Config struct. Keys not
// present in the file keep their Default values.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse reads KEY=VALUE lines. Blank lines and lines starting with # are
// skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.Set(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Set sets a config value based on the key.
func (c *Config) Set(key, value string) error {
	switch key {
	// OSC output
	case "OSC_IP":
		c.OSCIP = value
	case "OSC_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid OSC_PORT %q: %w", value, err)
		}
		c.OSCPort = port
	case "OSC_MAX_PACKET_SIZE":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid OSC_MAX_PACKET_SIZE %q: %w", value, err)
		}
		c.OSCMaxPacketSize = size
	case "OSC_INDEXED_ADDRESSES":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid OSC_INDEXED_ADDRESSES %q: %w", value, err)
		}
		c.OSCIndexedAddresses = on

	// Sampling
	case "DEVICE_FILTER":
		idx, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEVICE_FILTER %q: %w", value, err)
		}
		c.DeviceFilter = idx
	case "CYCLE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CYCLE_INTERVAL_MS %q: %w", value, err)
		}
		c.CycleIntervalMS = interval
	case "RUNTIME":
		c.Runtime = value
	case "LOG_DEBUG":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEBUG %q: %w", value, err)
		}
		c.LogDebug = on

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC_PREFIX":
		c.MQTTTopicPrefix = strings.TrimSuffix(value, "/")
	case "MQTT_PUBLISH_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PUBLISH_INTERVAL_MS %q: %w", value, err)
		}
		c.MQTTPublishIntervalMS = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// OSC console
	case "OSC_LISTEN_ADDR":
		c.OSCListenAddr = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.OSCIP == "" {
		return fmt.Errorf("OSC_IP is required")
	}
	if c.OSCPort < 1 || c.OSCPort > 65535 {
		return fmt.Errorf("OSC_PORT must be 1-65535, got %d", c.OSCPort)
	}
	// 65507 is the largest IPv4 UDP payload.
	if c.OSCMaxPacketSize < 64 || c.OSCMaxPacketSize > 65507 {
		return fmt.Errorf("OSC_MAX_PACKET_SIZE must be 64-65507, got %d", c.OSCMaxPacketSize)
	}
	if c.DeviceFilter < -1 || c.DeviceFilter > 63 {
		return fmt.Errorf("DEVICE_FILTER must be -1 (all) or 0-63, got %d", c.DeviceFilter)
	}
	if c.CycleIntervalMS < 0 {
		return fmt.Errorf("CYCLE_INTERVAL_MS must not be negative, got %d", c.CycleIntervalMS)
	}
	if c.MQTTPublishIntervalMS < 0 {
		return fmt.Errorf("MQTT_PUBLISH_INTERVAL_MS must not be negative, got %d", c.MQTTPublishIntervalMS)
	}
	if c.MQTTBroker != "" && c.MQTTTopicPrefix == "" {
		return fmt.Errorf("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}
	if c.WebServerPort < 1 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	return nil
}

// MirrorEnabled reports whether poses are mirrored to MQTT.
func (c *Config) MirrorEnabled() bool {
	return c.MQTTBroker != ""
}

// InitGlobal initializes the global configuration from file. A missing file
// leaves the defaults in place. Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = LoadOptional(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
