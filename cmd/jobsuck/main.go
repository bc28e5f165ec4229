// Copyright 2021 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackbister/jobsuck/internal/config"
	"github.com/jackbister/jobsuck/internal/dependencyinjection"
	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/stats"
	"github.com/jackbister/jobsuck/internal/web"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var versionString string // This must be set using -ldflags "-X main.versionString=<version>" when building for --version to work

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\nGenerates a Gantt chart, a statistics dashboard and a summary report from a job scheduler log.\nAt least one of -timeline, -dashboard, -report, -all, -exportdb or -webaddr must be given.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	cmdFlags, err := config.ParseCommandLine(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse command line: %v\n", err)
		os.Exit(2)
	}

	if cmdFlags.PrintVersion {
		if versionString == "" {
			fmt.Println("(unknown version)")
			return
		}
		fmt.Println(versionString)
		return
	}

	var logger *zap.Logger
	if cmdFlags.LogType == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := cmdFlags.ToConfig(logger)
	if err != nil {
		logger.Fatal("got error when reading configuration", zap.Error(err))
	}
	if !cfg.Outputs.Any() && cfg.ExportDatabaseFile == "" && cfg.Web.Address == "" {
		flag.Usage()
		return
	}

	runId := uuid.NewString()
	logger = logger.With(zap.String("runId", runId))

	c, err := dependencyinjection.InjectionContextFromConfig(cfg, runId, logger)
	if err != nil {
		logger.Fatal("got error when creating dependency injection context", zap.Error(err))
	}

	err = c.Invoke(func(tbl *events.EventTable, engine *stats.Engine, reconstructor *intervals.Reconstructor, clock intervals.Clock) error {
		res := reconstructor.Reconstruct(tbl)
		for _, issue := range res.Issues {
			logger.Warn("data quality issue in job log",
				zap.String("jobId", issue.JobId),
				zap.String("kind", string(issue.Kind)),
				zap.String("detail", issue.Detail))
		}
		if len(res.Unstarted) > 0 {
			logger.Info("jobs without a STARTED event are not shown in the timeline",
				zap.Int("numJobs", len(res.Unstarted)),
				zap.Strings("jobIds", res.Unstarted))
		}

		return produceOutputs(cfg, tbl, engine, res, clock, runId, logger)
	})
	if err != nil {
		fatalError(logger, err)
	}

	if cfg.Web.Address != "" {
		err = c.Invoke(func(w web.Web) error {
			return w.Serve()
		})
		if err != nil {
			logger.Fatal("got error from web server", zap.Error(err))
		}
	}
}

func fatalError(logger *zap.Logger, err error) {
	root := dig.RootCause(err)
	var notFound *events.SourceNotFoundError
	var malformed *events.MalformedLogError
	var empty *events.EmptyLogError
	switch {
	case errors.As(root, &notFound):
		logger.Fatal("job log could not be read", zap.String("fileName", notFound.Path), zap.Error(root))
	case errors.As(root, &malformed):
		logger.Fatal("job log is malformed", zap.Int("row", malformed.Row), zap.Error(root))
	case errors.As(root, &empty):
		logger.Fatal("job log is empty", zap.String("fileName", empty.Path))
	default:
		logger.Fatal("got error when generating outputs", zap.Error(root))
	}
}
