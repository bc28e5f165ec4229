// Copyright 2024 Jack Bister
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

package config

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Every field is a pointer so that settings absent from the file keep their previous value.
type fileOutputsConfig struct {
	Timeline  *bool `yaml:"timeline"`
	Dashboard *bool `yaml:"dashboard"`
	Report    *bool `yaml:"report"`
	All       *bool `yaml:"all"`
}

type fileWebConfig struct {
	Address *string `yaml:"address"`
}

type fileConfig struct {
	LogFile            *string            `yaml:"logFile"`
	OutputDir          *string            `yaml:"outputDir"`
	Outputs            *fileOutputsConfig `yaml:"outputs"`
	TimeLayout         *string            `yaml:"timeLayout"`
	TimeZone           *string            `yaml:"timeZone"`
	CsvDelimiter       *string            `yaml:"csvDelimiter"`
	ExportDatabaseFile *string            `yaml:"exportDatabaseFile"`
	ReportTitle        *string            `yaml:"reportTitle"`
	Web                *fileWebConfig     `yaml:"web"`
}

// FromFile reads a YAML (or JSON) configuration file and applies it on top of base. base is not modified.
func FromFile(r io.Reader, base *Config) (*Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&fc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	ret := *base
	web := *base.Web
	ret.Web = &web
	if fc.LogFile != nil {
		ret.LogFile = *fc.LogFile
	}
	if fc.OutputDir != nil {
		ret.OutputDir = *fc.OutputDir
	}
	if fc.Outputs != nil {
		if fc.Outputs.Timeline != nil {
			ret.Outputs.Timeline = *fc.Outputs.Timeline
		}
		if fc.Outputs.Dashboard != nil {
			ret.Outputs.Dashboard = *fc.Outputs.Dashboard
		}
		if fc.Outputs.Report != nil {
			ret.Outputs.Report = *fc.Outputs.Report
		}
		if fc.Outputs.All != nil && *fc.Outputs.All {
			ret.Outputs = OutputsConfig{Timeline: true, Dashboard: true, Report: true}
		}
	}
	if fc.TimeLayout != nil {
		ret.TimeLayout = *fc.TimeLayout
	}
	if fc.TimeZone != nil {
		loc, err := parseLocation(*fc.TimeZone)
		if err != nil {
			return nil, err
		}
		ret.Location = loc
	}
	if fc.CsvDelimiter != nil {
		d, err := parseDelimiter(*fc.CsvDelimiter)
		if err != nil {
			return nil, err
		}
		ret.CsvDelimiter = d
	}
	if fc.ExportDatabaseFile != nil {
		ret.ExportDatabaseFile = *fc.ExportDatabaseFile
	}
	if fc.ReportTitle != nil {
		ret.ReportTitle = *fc.ReportTitle
	}
	if fc.Web != nil && fc.Web.Address != nil {
		ret.Web.Address = *fc.Web.Address
	}
	return &ret, nil
}
