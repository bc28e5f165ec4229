// Copyright 2023 Jack Bister
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

package dependencyinjection

import (
	"fmt"

	"github.com/jackbister/jobsuck/internal/config"
	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/stats"
	"github.com/jackbister/jobsuck/internal/web"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

// InjectionContextFromConfig builds the container. The log file is loaded lazily, the first time something depends on the event table.
func InjectionContextFromConfig(cfg *config.Config, runId string, logger *zap.Logger) (*dig.Container, error) {
	c := dig.New()
	err := provideBasics(c, cfg, runId, logger)
	if err != nil {
		return nil, err
	}
	err = c.Provide(provideTable)
	if err != nil {
		return nil, err
	}
	err = c.Provide(func(cfg *config.Config) *stats.Engine {
		return stats.NewEngine(cfg.Location)
	})
	if err != nil {
		return nil, err
	}
	err = c.Provide(intervals.NewReconstructor)
	if err != nil {
		return nil, err
	}
	err = c.Provide(web.NewWeb)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func provideBasics(c *dig.Container, cfg *config.Config, runId string, logger *zap.Logger) error {
	err := c.Provide(func() *zap.Logger {
		return logger
	})
	if err != nil {
		return err
	}
	err = c.Provide(func() *config.Config {
		return cfg
	})
	if err != nil {
		return err
	}
	err = c.Provide(func() string {
		return runId
	}, dig.Name("runId"))
	if err != nil {
		return err
	}
	err = c.Provide(func() intervals.Clock {
		return intervals.SystemClock{}
	})
	if err != nil {
		return err
	}
	return nil
}

func provideTable(cfg *config.Config, logger *zap.Logger) (*events.EventTable, error) {
	tbl, err := events.LoadFile(cfg.LogFile, cfg.LoadOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load job log: %w", err)
	}
	return tbl, nil
}
