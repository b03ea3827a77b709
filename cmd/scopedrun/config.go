package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// fileConfig is the on-disk shape for --config: persisted CLI defaults,
// in YAML. Timeout is a string ("200ms", "2s") rather than time.Duration
// because yaml.v2 has no built-in Duration support.
type fileConfig struct {
	Verbose bool   `yaml:"verbose"`
	Debug   bool   `yaml:"debug"`
	Timeout string `yaml:"timeout"`
}

func loadConfig(path string, global *cmdGlobal) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Verbose {
		global.flagLogVerbose = true
	}
	if fc.Debug {
		global.flagLogDebug = true
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return err
		}
		global.flagTimeout = d
	}

	return nil
}
