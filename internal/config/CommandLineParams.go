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
	"flag"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

const defaultCfgFile = "jobsuck.yaml"

type CommandLineFlags struct {
	CfgFile      string
	Dashboard    bool
	Delimiter    string
	ExportDb     string
	LogFile      string
	LogType      string
	OutputDir    string
	PrintVersion bool
	Report       bool
	All          bool
	Timeline     bool
	TimeLayout   string
	TimeZone     string
	WebAddr      string

	// set holds the names of the flags given on the command line, so that only those override the config file.
	set map[string]bool
}

// ParseCommandLine parses args (without the program name) using flags. The caller chooses the flag.ErrorHandling of flags.
func ParseCommandLine(flags *flag.FlagSet, args []string) (*CommandLineFlags, error) {
	ret := CommandLineFlags{set: map[string]bool{}}
	flags.StringVar(&ret.CfgFile, "config", defaultCfgFile, "The name of a YAML or JSON file containing the configuration for jobsuck. Flags given on the command line override the values in the file.")
	flags.BoolVar(&ret.Dashboard, "dashboard", false, "Generate the performance dashboard.")
	flags.StringVar(&ret.Delimiter, "delimiter", ",", "The delimiter between columns in the job log. Use \\t for tabs.")
	flags.StringVar(&ret.ExportDb, "exportdb", "", "Write the loaded events to this SQLite database file. The file can later be given as the log file.")
	flags.StringVar(&ret.LogFile, "logfile", "logs/job_log.csv", "Path to the job log. Files ending in .db, .sqlite or .sqlite3 are read as SQLite databases written by -exportdb.")
	flags.StringVar(&ret.LogFile, "l", "logs/job_log.csv", "Shorthand for -logfile.")
	flags.StringVar(&ret.LogType, "logType", "production", "The type of logger to use. Set it to 'development' to get human readable logging instead of JSON logging")
	flags.StringVar(&ret.OutputDir, "outdir", ".", "Output directory for generated files. It is created if it does not exist.")
	flags.StringVar(&ret.OutputDir, "o", ".", "Shorthand for -outdir.")
	flags.BoolVar(&ret.PrintVersion, "version", false, "Print version info and quit.")
	flags.BoolVar(&ret.Report, "report", false, "Generate the summary report.")
	flags.BoolVar(&ret.All, "all", false, "Generate all visualizations and reports.")
	flags.BoolVar(&ret.Timeline, "timeline", false, "Generate the Gantt chart of job execution per core.")
	flags.BoolVar(&ret.Timeline, "gantt", false, "Same as -timeline.")
	flags.StringVar(&ret.TimeLayout, "timelayout", "", "The layout of the Timestamp column, see https://golang.org/pkg/time/#Parse. There are also the special timelayouts \"UNIX\", \"UNIX_MILLIS\", and \"UNIX_DECIMAL_NANOS\". By default the format is detected automatically.")
	flags.StringVar(&ret.TimeZone, "timezone", "UTC", "The IANA time zone (or 'Local') used for timestamps without zone information and for grouping submissions by hour of day.")
	flags.StringVar(&ret.WebAddr, "webaddr", "", "If set, serve the analytics of the loaded log over HTTP on this address after generating the requested outputs.")
	err := flags.Parse(args)
	if err != nil {
		return nil, err
	}
	flags.Visit(func(f *flag.Flag) {
		ret.set[f.Name] = true
	})
	return &ret, nil
}

func (c *CommandLineFlags) isSet(names ...string) bool {
	for _, n := range names {
		if c.set[n] {
			return true
		}
	}
	return false
}

// ToConfig builds the configuration from the defaults, the config file if it exists, and the flags that were given explicitly.
func (c *CommandLineFlags) ToConfig(logger *zap.Logger) (*Config, error) {
	cfg := Default()
	cfgFile, err := os.Open(c.CfgFile)
	if err == nil {
		defer cfgFile.Close()
		cfg, err = FromFile(cfgFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing configuration from file '%s': %w", c.CfgFile, err)
		}
		logger.Info("using configuration from file", zap.String("fileName", c.CfgFile))
	} else if errors.Is(err, fs.ErrNotExist) && !c.isSet("config") {
		logger.Debug("no config file found, will use command line configuration", zap.String("fileName", c.CfgFile))
	} else {
		logger.Warn("Could not open config file, will use command line configuration", zap.String("fileName", c.CfgFile), zap.Error(err))
	}

	if c.isSet("logfile", "l") {
		cfg.LogFile = c.LogFile
	}
	if c.isSet("outdir", "o") {
		cfg.OutputDir = c.OutputDir
	}
	if c.isSet("timeline", "gantt") {
		cfg.Outputs.Timeline = c.Timeline
	}
	if c.isSet("dashboard") {
		cfg.Outputs.Dashboard = c.Dashboard
	}
	if c.isSet("report") {
		cfg.Outputs.Report = c.Report
	}
	if c.All {
		cfg.Outputs = OutputsConfig{Timeline: true, Dashboard: true, Report: true}
	}
	if c.isSet("timelayout") {
		cfg.TimeLayout = c.TimeLayout
	}
	if c.isSet("timezone") {
		loc, err := parseLocation(c.TimeZone)
		if err != nil {
			return nil, err
		}
		cfg.Location = loc
	}
	if c.isSet("delimiter") {
		d, err := parseDelimiter(c.Delimiter)
		if err != nil {
			return nil, err
		}
		cfg.CsvDelimiter = d
	}
	if c.isSet("exportdb") {
		cfg.ExportDatabaseFile = c.ExportDb
	}
	if c.isSet("webaddr") {
		cfg.Web.Address = c.WebAddr
	}
	return cfg, nil
}
