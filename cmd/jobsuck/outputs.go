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

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jackbister/jobsuck/internal/config"
	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/render"
	"github.com/jackbister/jobsuck/internal/stats"

	"go.uber.org/zap"
)

type output struct {
	path    string
	content []byte
}

// generateOutputs renders every selected output in memory, so that nothing is written if any of them fails.
func generateOutputs(cfg *config.Config, tbl *events.EventTable, engine *stats.Engine, res intervals.Result, clock intervals.Clock, runId string) ([]output, error) {
	var ret []output
	if cfg.Outputs.Timeline {
		var b bytes.Buffer
		err := render.RenderTimeline(&b, res.Intervals, render.TimelineOptions{Location: engine.Location()})
		if err != nil {
			return nil, err
		}
		ret = append(ret, output{path: cfg.TimelinePath(), content: b.Bytes()})
	}
	if cfg.Outputs.Dashboard {
		var b bytes.Buffer
		err := render.RenderDashboard(&b, render.NewDashboardData(engine, tbl))
		if err != nil {
			return nil, err
		}
		ret = append(ret, output{path: cfg.DashboardPath(), content: b.Bytes()})
	}
	if cfg.Outputs.Report {
		running := 0
		for _, iv := range res.Intervals {
			if iv.IsRunning() {
				running++
			}
		}
		var b bytes.Buffer
		err := render.WriteReport(&b, render.ReportData{
			Title:       cfg.ReportTitle,
			RunID:       runId,
			Summary:     engine.Summarize(tbl),
			RunningJobs: running,
			GeneratedAt: clock.Now(),
			Location:    engine.Location(),
		})
		if err != nil {
			return nil, err
		}
		ret = append(ret, output{path: cfg.ReportPath(), content: b.Bytes()})
	}
	return ret, nil
}

// produceOutputs writes the selected outputs and the optional database export.
// Every fallible step that does not touch the output files runs first, so a failed run leaves the outputs and the export untouched.
func produceOutputs(cfg *config.Config, tbl *events.EventTable, engine *stats.Engine, res intervals.Result, clock intervals.Clock, runId string, logger *zap.Logger) error {
	outputs, err := generateOutputs(cfg, tbl, engine, res, clock, runId)
	if err != nil {
		return err
	}
	var export *stagedExport
	if cfg.ExportDatabaseFile != "" {
		export, err = stageExport(cfg.ExportDatabaseFile, tbl, logger)
		if err != nil {
			return err
		}
	}
	err = writeOutputs(cfg.OutputDir, outputs, logger)
	if err != nil {
		if export != nil {
			export.discard()
		}
		return err
	}
	if export != nil {
		return export.commit(logger)
	}
	return nil
}

func writeOutputs(dir string, outputs []output, logger *zap.Logger) error {
	if len(outputs) == 0 {
		return nil
	}
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", dir, err)
	}
	for _, o := range outputs {
		err = os.WriteFile(o.path, o.content, 0o644)
		if err != nil {
			return fmt.Errorf("failed to write '%s': %w", o.path, err)
		}
		logger.Info("wrote output", zap.String("fileName", o.path))
	}
	return nil
}
