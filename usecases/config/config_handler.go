//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/weaviate/simple-todo/usecases/monitoring"
)

// DefaultConfigFile is the default file when no config file is provided. It
// is optional, a missing default file is not an error.
const DefaultConfigFile string = "./simple-todo.yaml"

const (
	DefaultPersistenceDataPath   = "./db"
	DefaultCompactionProbability = 0.1
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "json"
	DefaultMonitoringTextfile    = "./simple-todo.prom"
	DefaultRetryMaxRetries       = 3
	DefaultRetryInterval         = 50 * time.Millisecond
)

// Flags are input options from the command line. Empty values are ignored.
type Flags struct {
	ConfigFile string
	DataPath   string
	LogLevel   string
	LogFormat  string
}

// Config outline of the config file
type Config struct {
	Persistence   Persistence       `json:"persistence" yaml:"persistence"`
	Compaction    Compaction        `json:"compaction" yaml:"compaction"`
	DegradedReads bool              `json:"degraded_reads" yaml:"degraded_reads"`
	LogLevel      string            `json:"log_level" yaml:"log_level"`
	LogFormat     string            `json:"log_format" yaml:"log_format"`
	Monitoring    monitoring.Config `json:"monitoring" yaml:"monitoring"`
	Retry         Retry             `json:"retry" yaml:"retry"`
}

type Persistence struct {
	// DataPath is the checkpoint file, the change log and the id counter
	// live next to it with the suffixes .change and .seq
	DataPath string `json:"data_path" yaml:"data_path"`
}

func (p Persistence) Validate() error {
	if p.DataPath == "" {
		return fmt.Errorf("persistence.data_path must be set")
	}

	return nil
}

type Compaction struct {
	Probability float64 `json:"probability" yaml:"probability"`
}

func (c Compaction) Validate() error {
	if math.IsNaN(c.Probability) || c.Probability < 0 || c.Probability > 1 {
		return fmt.Errorf("compaction.probability must be between 0 and 1, got %v", c.Probability)
	}

	return nil
}

// Retry controls how often a read is retried after an I/O failure.
type Retry struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	Interval   time.Duration `json:"interval" yaml:"interval"`
}

func (r Retry) Validate() error {
	if r.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}

	if r.Interval < 0 {
		return fmt.Errorf("retry.interval must not be negative")
	}

	return nil
}

func Defaults() Config {
	return Config{
		Persistence: Persistence{DataPath: DefaultPersistenceDataPath},
		Compaction:  Compaction{Probability: DefaultCompactionProbability},
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Monitoring: monitoring.Config{
			TextfilePath: DefaultMonitoringTextfile,
		},
		Retry: Retry{
			MaxRetries: DefaultRetryMaxRetries,
			Interval:   DefaultRetryInterval,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Persistence.Validate(); err != nil {
		return configErr(err)
	}

	if err := c.Compaction.Validate(); err != nil {
		return configErr(err)
	}

	if err := c.Retry.Validate(); err != nil {
		return configErr(err)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return configErr(err)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return configErr(fmt.Errorf("log_format must be one of json, text, got %q", c.LogFormat))
	}

	if c.Monitoring.Enabled && c.Monitoring.TextfilePath == "" {
		return configErr(fmt.Errorf("monitoring.textfile_path must be set when monitoring is enabled"))
	}

	return nil
}

// LoadConfig creates the config from the following sources, a later source
// overrides an earlier one:
// 1. Defaults
// 2. Config file
// 3. Environment variables
// 4. Command line flags
func LoadConfig(flags Flags) (Config, error) {
	config := Defaults()

	configFileName := flags.ConfigFile
	explicit := configFileName != ""
	if !explicit {
		configFileName = DefaultConfigFile
	}

	file, err := os.ReadFile(configFileName)
	if err != nil && (explicit || !os.IsNotExist(err)) {
		return config, configErr(errors.Wrapf(err, "read config file %q", configFileName))
	}

	if len(file) > 0 {
		if err := yaml.UnmarshalStrict(file, &config); err != nil {
			return config, configErr(errors.Wrapf(err, "unmarshal yaml config file %q", configFileName))
		}
	}

	if err := FromEnv(&config); err != nil {
		return config, configErr(err)
	}

	config.fromFlags(flags)

	return config, config.Validate()
}

// fromFlags parses values from flags given as parameter and overrides values in the config
func (c *Config) fromFlags(flags Flags) {
	if flags.DataPath != "" {
		c.Persistence.DataPath = flags.DataPath
	}

	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if flags.LogFormat != "" {
		c.LogFormat = flags.LogFormat
	}
}

func configErr(err error) error {
	return fmt.Errorf("invalid config: %w", err)
}
