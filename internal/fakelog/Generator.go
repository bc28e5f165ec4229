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

package fakelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit"
	"github.com/jackbister/jobsuck/internal/events"
)

// Header is the column order written by the job scheduler's logger.
var Header = []string{"Timestamp", "JobID", "JobName", "Command", "Priority", "Status", "ThreadID", "CoreID", "Duration(ms)", "Event"}

const TimestampLayout = "2006-01-02 15:04:05.000"

// Numeric job states as the scheduler logs them in the Status column.
const (
	statusPending   = 0
	statusRunning   = 1
	statusCompleted = 2
	statusFailed    = 3
	statusKilled    = 4
)

var commandTemplates = []string{
	"./{hacker.noun} --{hacker.abbreviation}=###",
	"{hacker.verb} {hacker.noun}",
	"sleep #",
	"make {hacker.noun}",
}

type GeneratorConfig struct {
	Jobs  int
	Cores int
	Start time.Time
	// Seed makes the output reproducible. Zero picks a seed from the clock.
	Seed int64
}

type row struct {
	ts     time.Time
	fields []string
}

// Generate writes a fake job log. Most jobs complete, some fail or are killed,
// some are left running and some are never started.
func Generate(w io.Writer, cfg GeneratorConfig) error {
	if cfg.Jobs < 0 || cfg.Cores <= 0 {
		return fmt.Errorf("invalid generator config: jobs=%v, cores=%v", cfg.Jobs, cfg.Cores)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	start := cfg.Start
	if start.IsZero() {
		start = time.Now().Add(-time.Hour)
	}

	var rows []row
	submitTime := start
	for id := 1; id <= cfg.Jobs; id++ {
		submitTime = submitTime.Add(time.Duration(gofakeit.Number(0, 5000)) * time.Millisecond)
		rows = append(rows, jobRows(id, submitTime, cfg.Cores)...)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	cw := csv.NewWriter(w)
	err := cw.Write(Header)
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		err = cw.Write(r.fields)
		if err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func jobRows(id int, submitted time.Time, cores int) []row {
	name := "-"
	if gofakeit.Number(0, 9) > 0 {
		name = gofakeit.Generate("{hacker.verb}_{hacker.noun}")
	}
	cmd := gofakeit.Generate(gofakeit.RandString(commandTemplates))
	priority := gofakeit.Number(0, 3)
	thread := gofakeit.Number(1000, 9999)
	mk := func(ts time.Time, status, core int, durationMs int64, kind events.Kind) row {
		return row{ts: ts, fields: []string{
			ts.Format(TimestampLayout),
			strconv.Itoa(id),
			name,
			cmd,
			strconv.Itoa(priority),
			strconv.Itoa(status),
			strconv.Itoa(thread),
			strconv.Itoa(core),
			strconv.FormatInt(durationMs, 10),
			string(kind),
		}}
	}

	ret := []row{mk(submitted, statusPending, -1, 0, events.KindSubmitted)}
	// One in twenty jobs never starts.
	if gofakeit.Number(0, 19) == 0 {
		return ret
	}
	started := submitted.Add(time.Duration(gofakeit.Number(10, 2000)) * time.Millisecond)
	core := gofakeit.Number(0, cores-1)
	ret = append(ret, mk(started, statusRunning, core, 0, events.KindStarted))

	outcome := gofakeit.Number(0, 99)
	if outcome < 5 {
		return ret
	}
	durationMs := int64(gofakeit.Number(100, 60000))
	ended := started.Add(time.Duration(durationMs) * time.Millisecond)
	switch {
	case outcome < 80:
		ret = append(ret, mk(ended, statusCompleted, core, durationMs, events.KindCompleted))
	case outcome < 92:
		ret = append(ret, mk(ended, statusFailed, core, durationMs, events.KindFailed))
	default:
		ret = append(ret, mk(ended, statusKilled, core, durationMs, events.KindKilled))
	}
	return ret
}
