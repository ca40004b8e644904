//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rsviz/rsviz/ridge"
	"github.com/rsviz/rsviz/stats"
)

// Input file types.
const (
	InputNDJSON = "ndjson"
	InputList   = "list"
)

type Config struct { // Needs to be exported for TOML to work
	LogPath         string        `toml:"log-file"`
	DbConnectString string        `toml:"db-connect-string"`
	InputFile       string        `toml:"input-file"`
	InputType       string        `toml:"input-type"`
	OutputDir       string        `toml:"output-dir"`
	SplitField      string        `toml:"split-field"`
	Threshold       int           `toml:"threshold"`
	OutputFields    []string      `toml:"output-fields"`
	RidgeStyle      ridgeStyle    `toml:"ridge-style"`
	SortOrder       sortOrder     `toml:"sort-order"`
	OutlierPolicy   outlierPolicy `toml:"outlier-policy"`
	RidgeSpacing    float64       `toml:"ridge-spacing"`
	CacheSize       int           `toml:"summary-cache-size"`
	Verbose         bool          `toml:"verbose"`
}

type ridgeStyle struct{ ridge.Style }

func (s *ridgeStyle) UnmarshalText(text []byte) error {
	switch string(text) {
	case "classic":
		s.Style = ridge.Classic
	case "clean":
		s.Style = ridge.Clean
	default:
		return fmt.Errorf("invalid ridge-style: %q (valid: classic, clean)", string(text))
	}
	return nil
}

type sortOrder struct{ ridge.Order }

func (o *sortOrder) UnmarshalText(text []byte) error {
	switch string(text) {
	case "mean":
		o.Order = ridge.ByMean
	case "alpha":
		o.Order = ridge.ByKey
	default:
		return fmt.Errorf("invalid sort-order: %q (valid: mean, alpha)", string(text))
	}
	return nil
}

type outlierPolicy struct{ stats.OutlierPolicy }

func (p *outlierPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "keep":
		p.OutlierPolicy = stats.KeepOutliers
	case "discard":
		p.OutlierPolicy = stats.DiscardOutliers
	default:
		return fmt.Errorf("invalid outlier-policy: %q (valid: keep, discard)", string(text))
	}
	return nil
}

var readConfig = func(cfgPath string) (*Config, error) {
	cfg := &Config{}
	_, err := toml.DecodeFile(cfgPath, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the TOML config at cfgPath, or returns an all
// default Config when cfgPath is empty. Validation happens separately
// in Process, after the caller has applied any flag overrides.
func LoadConfig(cfgPath string) (*Config, error) {
	if cfgPath == "" {
		return &Config{}, nil
	}
	return readConfig(cfgPath)
}

func (c *Config) processInputFile() error {
	if c.InputFile == "" {
		return fmt.Errorf("no input file given (input-file setting empty)")
	}
	switch c.InputType {
	case InputNDJSON, InputList:
	case "":
		c.InputType = InputNDJSON
	default:
		return fmt.Errorf("invalid input-type: %q (valid: %s, %s)", c.InputType, InputNDJSON, InputList)
	}
	return nil
}

func (c *Config) processOutputDir() error {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}

func (c *Config) processSplitField() error {
	if c.SplitField == "" {
		return fmt.Errorf("no split field specified (split-field setting empty)")
	}
	return nil
}

func (c *Config) processThreshold() error {
	if c.Threshold == 0 {
		c.Threshold = 1
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be positive: %d", c.Threshold)
	}
	return nil
}

func (c *Config) processOutputFields() error {
	if len(c.OutputFields) == 0 {
		c.OutputFields = []string{"wall_time", "cpu_time", "memory", "disk"}
	}
	log.Printf("Reporting on fields: %v.", c.OutputFields)
	return nil
}

func (c *Config) processDbConnectString() error {
	if os.Getenv("RSVIZ_DB_CONNECT") != "" {
		c.DbConnectString = os.Getenv("RSVIZ_DB_CONNECT")
	}
	if c.DbConnectString == "" {
		log.Printf("db-connect-string empty, work-unit lookups disabled.")
	}
	return nil
}

func (c *Config) processLogFile() error {
	if os.Getenv("RSVIZ_LOG") != "" {
		c.LogPath = os.Getenv("RSVIZ_LOG")
	}
	if c.LogPath == "" {
		return nil // log to stderr
	}
	return setupLogFile(c.LogPath)
}

func (c *Config) processRidgeSpacing() error {
	if c.RidgeSpacing == 0 {
		c.RidgeSpacing = 1.0
	}
	if c.RidgeSpacing < 0 {
		return fmt.Errorf("ridge-spacing must not be negative: %v", c.RidgeSpacing)
	}
	return nil
}

func (c *Config) processCacheSize() error {
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0 // disables the summary cache
	}
	return nil
}

// Process validates the configuration and fills in defaults. Called
// once, after flag overrides are applied.
func (c *Config) Process() error {
	if err := c.processLogFile(); err != nil {
		return err
	}
	if err := c.processInputFile(); err != nil {
		return err
	}
	if err := c.processOutputDir(); err != nil {
		return err
	}
	if err := c.processSplitField(); err != nil {
		return err
	}
	if err := c.processThreshold(); err != nil {
		return err
	}
	if err := c.processOutputFields(); err != nil {
		return err
	}
	if err := c.processDbConnectString(); err != nil {
		return err
	}
	if err := c.processRidgeSpacing(); err != nil {
		return err
	}
	if err := c.processCacheSize(); err != nil {
		return err
	}
	return nil
}
