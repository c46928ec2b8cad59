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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FromEnv takes a *Config as it will respect initial config that has been
// provided by other means (e.g. a config file) and will only extend those that
// are set
func FromEnv(config *Config) error {
	if v := os.Getenv("PERSISTENCE_DATA_PATH"); v != "" {
		config.Persistence.DataPath = v
	}

	if v := os.Getenv("COMPACTION_PROBABILITY"); v != "" {
		asFloat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "parse COMPACTION_PROBABILITY as float")
		}

		config.Compaction.Probability = asFloat
	}

	if v := os.Getenv("DEGRADED_READS_ENABLED"); v != "" {
		config.DegradedReads = enabled(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.LogFormat = v
	}

	if v := os.Getenv("PROMETHEUS_MONITORING_ENABLED"); v != "" {
		config.Monitoring.Enabled = enabled(v)
	}

	if v := os.Getenv("PROMETHEUS_TEXTFILE_PATH"); v != "" {
		config.Monitoring.TextfilePath = v
	}

	if v := os.Getenv("RETRY_MAX_RETRIES"); v != "" {
		asInt, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse RETRY_MAX_RETRIES as int")
		}
		if asInt < 0 {
			return errors.Errorf("RETRY_MAX_RETRIES must not be negative, got %d", asInt)
		}

		config.Retry.MaxRetries = asInt
	}

	if v := os.Getenv("RETRY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "parse RETRY_INTERVAL as duration")
		}

		config.Retry.Interval = d
	}

	return nil
}

func enabled(value string) bool {
	switch strings.ToLower(value) {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
