// Package config provides the frame limits of the sasl transport.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/yomorun/saslframe/core/sasl"
)

// DefaultMaxPayloadSize is the default limit of both frame kinds.
const DefaultMaxPayloadSize = 16 * 1024 * 1024

// Limits bounds the payloads a peer may announce.
type Limits struct {
	// MaxNegotiationPayload is the largest negotiation payload accepted.
	MaxNegotiationPayload int `yaml:"max_negotiation_payload" env:"SASL_MAX_NEGOTIATION_PAYLOAD" envDefault:"16777216"`
	// MaxDataPayload is the largest data payload accepted.
	MaxDataPayload int `yaml:"max_data_payload" env:"SASL_MAX_DATA_PAYLOAD" envDefault:"16777216"`
}

// Config represents the config file.
type Config struct {
	// Limits bounds the frames.
	Limits Limits `yaml:"limits"`
	// Negotiation is the number of negotiation frames at the start of a stream,
	// -1 means they run until a COMPLETE frame and 0 means the stream has none.
	// It is nil when the file does not set it.
	Negotiation *int `yaml:"negotiation"`
}

// ErrConfigExt represents the extension of config file is incorrect.
var ErrConfigExt = errors.New(`saslframe: the extension of config is incorrect, it should ".yaml|.yml"`)

// LimitsFromEnv parses Limits from environment.
func LimitsFromEnv() (Limits, error) {
	var limits Limits
	if err := env.Parse(&limits); err != nil {
		return limits, err
	}
	return limits, limits.validate()
}

// ParseConfigFile parses the config from configPath, fields missing from the file
// keep the values from environment.
func ParseConfigFile(configPath string) (Config, error) {
	if ext := filepath.Ext(configPath); ext != ".yaml" && ext != ".yml" {
		return Config{}, ErrConfigExt
	}

	buf, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, err
	}

	limits, err := LimitsFromEnv()
	if err != nil {
		return Config{}, err
	}

	config := Config{Limits: limits}
	if err := yaml.Unmarshal(buf, &config); err != nil {
		return config, err
	}

	if config.Negotiation != nil && *config.Negotiation < -1 {
		return config, fmt.Errorf("config: negotiation must be -1 or more, got %d", *config.Negotiation)
	}

	return config, config.Limits.validate()
}

// NegotiationOptions returns the header options of negotiation frames.
func (l Limits) NegotiationOptions() []sasl.HeaderOption {
	return []sasl.HeaderOption{sasl.WithMaxPayloadSize(l.MaxNegotiationPayload)}
}

// DataOptions returns the header options of data frames.
func (l Limits) DataOptions() []sasl.HeaderOption {
	return []sasl.HeaderOption{sasl.WithMaxPayloadSize(l.MaxDataPayload)}
}

func (l Limits) validate() error {
	if l.MaxNegotiationPayload < 0 {
		return fmt.Errorf("config: max_negotiation_payload must not be negative, got %d", l.MaxNegotiationPayload)
	}
	if l.MaxDataPayload < 0 {
		return fmt.Errorf("config: max_data_payload must not be negative, got %d", l.MaxDataPayload)
	}
	return nil
}
