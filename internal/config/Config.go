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
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/parser"
)

const (
	TimelineFileName  = "job_gantt_chart.svg"
	DashboardFileName = "performance_dashboard.svg"
	ReportFileName    = "job_summary.txt"
)

type OutputsConfig struct {
	Timeline  bool
	Dashboard bool
	Report    bool
}

// Any reports whether at least one output was requested.
func (o OutputsConfig) Any() bool {
	return o.Timeline || o.Dashboard || o.Report
}

type WebConfig struct {
	// Address is empty when the web interface is disabled.
	Address string
}

type Config struct {
	LogFile   string
	OutputDir string
	Outputs   OutputsConfig

	// TimeLayout is empty to detect the timestamp format automatically.
	TimeLayout string
	// Location is used for timestamps without zone information and for bucketing submissions by hour of day.
	Location     *time.Location
	CsvDelimiter rune

	// ExportDatabaseFile is empty unless the loaded events should be written to a SQLite database.
	ExportDatabaseFile string

	ReportTitle string

	Web *WebConfig
}

func Default() *Config {
	return &Config{
		LogFile:      "logs/job_log.csv",
		OutputDir:    ".",
		Location:     time.UTC,
		CsvDelimiter: ',',
		ReportTitle:  "Job Execution Summary Report",
		Web:          &WebConfig{},
	}
}

func (c *Config) TimeParser() parser.TimeParser {
	return parser.TimeParser{Layout: c.TimeLayout, Location: c.Location}
}

func (c *Config) LoadOptions() events.LoadOptions {
	return events.LoadOptions{
		TimeParser: c.TimeParser(),
		Csv:        parser.CsvParserConfig{Delimiter: c.CsvDelimiter},
	}
}

func (c *Config) TimelinePath() string {
	return filepath.Join(c.OutputDir, TimelineFileName)
}

func (c *Config) DashboardPath() string {
	return filepath.Join(c.OutputDir, DashboardFileName)
}

func (c *Config) ReportPath() string {
	return filepath.Join(c.OutputDir, ReportFileName)
}

func parseLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	if name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone '%s': %w", name, err)
	}
	return loc, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("csv delimiter must be a single character but got '%s'", s)
	}
	return r, nil
}
