// Package config assembles the runtime configuration surface from §6:
// defaults, overridden by an optional .env-style file (parsed with
// go-envparse), overridden by OS environment variables, overridden last by
// CLI flags — flags always win.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-envparse"
)

// Config holds every recognized option from §6.
type Config struct {
	MTU                     int
	MaxReceiveBuffer        int
	FragmentTimeoutMS       int64
	CycleIntervalMS         int64
	PendingCommandTimeoutMS int64
	MaxRetries              int
	MaxGPIOPins             int

	ListenAddr    string
	BackendAddr   string
	BroadcastAddr string
	LogLevel      string
}

// Defaults returns the configuration surface's documented defaults.
func Defaults() Config {
	return Config{
		MTU:                     100,
		MaxReceiveBuffer:        4096,
		FragmentTimeoutMS:       5000,
		CycleIntervalMS:         5000,
		PendingCommandTimeoutMS: 5000,
		MaxRetries:              3,
		MaxGPIOPins:             64,
		ListenAddr:              ":8080",
		BackendAddr:             ":8081",
		BroadcastAddr:           "255.255.255.255:8079",
		LogLevel:                "info",
	}
}

var fieldSetters = map[string]func(*Config, string) error{
	"WHTS_MTU":                        intSetter(func(c *Config, v int) { c.MTU = v }),
	"WHTS_MAX_RECEIVE_BUFFER":         intSetter(func(c *Config, v int) { c.MaxReceiveBuffer = v }),
	"WHTS_FRAGMENT_TIMEOUT_MS":        int64Setter(func(c *Config, v int64) { c.FragmentTimeoutMS = v }),
	"WHTS_CYCLE_INTERVAL_MS":          int64Setter(func(c *Config, v int64) { c.CycleIntervalMS = v }),
	"WHTS_PENDING_COMMAND_TIMEOUT_MS": int64Setter(func(c *Config, v int64) { c.PendingCommandTimeoutMS = v }),
	"WHTS_MAX_RETRIES":                intSetter(func(c *Config, v int) { c.MaxRetries = v }),
	"WHTS_MAX_GPIO_PINS":              intSetter(func(c *Config, v int) { c.MaxGPIOPins = v }),
	"WHTS_LISTEN_ADDR":                stringSetter(func(c *Config, v string) { c.ListenAddr = v }),
	"WHTS_BACKEND_ADDR":               stringSetter(func(c *Config, v string) { c.BackendAddr = v }),
	"WHTS_BROADCAST_ADDR":             stringSetter(func(c *Config, v string) { c.BroadcastAddr = v }),
	"WHTS_LOG_LEVEL":                  stringSetter(func(c *Config, v string) { c.LogLevel = v }),
}

func intSetter(set func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(c, n)
		return nil
	}
}

func int64Setter(set func(*Config, int64)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		set(c, n)
		return nil
	}
}

func stringSetter(set func(*Config, string)) func(*Config, string) error {
	return func(c *Config, v string) error {
		set(c, v)
		return nil
	}
}

// Load builds a Config starting from Defaults, applying envFilePath (if
// non-empty and present) via go-envparse, then the process environment.
// CLI flags are applied afterward by the caller in cmd, which overlays the
// flags the user set onto the returned Config.
func Load(envFilePath string) (Config, error) {
	cfg := Defaults()

	if envFilePath != "" {
		f, err := os.Open(envFilePath)
		if err == nil {
			defer f.Close()
			vars, err := envparse.Parse(f)
			if err != nil {
				return cfg, fmt.Errorf("config: parsing %s: %w", envFilePath, err)
			}
			if err := applyAll(&cfg, vars); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	osEnv := map[string]string{}
	for key := range fieldSetters {
		if v, ok := os.LookupEnv(key); ok {
			osEnv[key] = v
		}
	}
	if err := applyAll(&cfg, osEnv); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyAll(cfg *Config, vars map[string]string) error {
	for key, value := range vars {
		setter, ok := fieldSetters[key]
		if !ok {
			continue
		}
		if err := setter(cfg, value); err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
	}
	return nil
}

// Validate enforces §6's hard bounds.
func (c Config) Validate() error {
	if c.MTU <= 7 {
		return fmt.Errorf("config: mtu must be > 7, got %d", c.MTU)
	}
	if c.MaxReceiveBuffer <= 0 {
		return fmt.Errorf("config: max_receive_buffer must be positive, got %d", c.MaxReceiveBuffer)
	}
	if c.MaxGPIOPins <= 0 || c.MaxGPIOPins > 64 {
		return fmt.Errorf("config: max_gpio_pins must be in (0, 64], got %d", c.MaxGPIOPins)
	}
	return nil
}
