// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config defines the global configuration structure
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Radio    RadioConfig    `mapstructure:"radio"`
	Emulator EmulatorConfig `mapstructure:"emulator"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// RadioConfig defines how to reach the radio to program
type RadioConfig struct {
	Model     string        `mapstructure:"model"`     // e.g. "md380", "opengd77"
	Transport string        `mapstructure:"transport"` // "serial", "tcp", "virtual"
	Timeout   time.Duration `mapstructure:"timeout"`   // Per request
	Serial    SerialConfig  `mapstructure:"serial"`    // Used if Transport is "serial"
	Tcp       TcpConfig     `mapstructure:"tcp"`       // Used if Transport is "tcp"
	Virtual   StorageConfig `mapstructure:"virtual"`   // Used if Transport is "virtual"
}

// EmulatorConfig defines an emulated radio served to programmers
type EmulatorConfig struct {
	Model     string           `mapstructure:"model"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Listeners []ListenerConfig `mapstructure:"listeners"`
}

// ListenerConfig defines an endpoint the emulator answers on
type ListenerConfig struct {
	Type   string       `mapstructure:"type"`   // "tcp", "serial"
	Tcp    TcpConfig    `mapstructure:"tcp"`    // Used if Type is "tcp"
	Serial SerialConfig `mapstructure:"serial"` // Used if Type is "serial"
}

// StorageConfig defines where a memory image is kept
type StorageConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "snapshot", "sqlite"
	Path string `mapstructure:"path"` // File path for all but "memory"
}

// TcpConfig defines TCP settings
type TcpConfig struct {
	Address string `mapstructure:"address"` // e.g. "0.0.0.0:4000" or "192.168.1.100:4000"
}

// SerialConfig defines serial line settings
type SerialConfig struct {
	Device      string        `mapstructure:"device"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	Parity      string        `mapstructure:"parity"`
	StopBits    int           `mapstructure:"stop_bits"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"` // Close the port after inactivity
}

// LoadConfig loads configuration from file and binds the given flags. A
// missing config file is not an error unless configFile names it.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/qdmr/")
		v.AddConfigPath("$HOME/.qdmr")
		v.AddConfigPath(".")
	}

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("radio.transport", "serial")
	v.SetDefault("radio.timeout", 2*time.Second)
	v.SetDefault("radio.serial.device", "/dev/ttyACM0")
	v.SetDefault("radio.serial.baud_rate", 115200)
	v.SetDefault("radio.virtual.type", "file")
	v.SetDefault("emulator.storage.type", "memory")

	v.SetEnvPrefix("qdmr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	config.Radio.Transport = strings.ToLower(config.Radio.Transport)
	fixupSerial(&config.Radio.Serial)
	for i := range config.Emulator.Listeners {
		l := &config.Emulator.Listeners[i]
		l.Type = strings.ToLower(l.Type)
		fixupSerial(&l.Serial)
	}
	if config.Emulator.Model == "" {
		config.Emulator.Model = config.Radio.Model
	}

	return &config, nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"log-file":  "log.file",
	"model":     "radio.model",
	"transport": "radio.transport",
	"device":    "radio.serial.device",
	"baud-rate": "radio.serial.baud_rate",
	"address":   "radio.tcp.address",
	"image":     "radio.virtual.path",
	"timeout":   "radio.timeout",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.Parity == "" {
		s.Parity = "N"
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}
}
