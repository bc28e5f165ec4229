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

package stats

import (
	"sort"
	"time"

	"github.com/jackbister/jobsuck/internal/events"
)

// Engine answers statistics queries over an EventTable. Nothing is cached, every call recomputes from the table.
type Engine struct {
	location *time.Location
}

// NewEngine creates an Engine that buckets submissions by the hour of day in loc. A nil loc means UTC.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

func (e *Engine) Location() *time.Location {
	return e.location
}

// StatusDistribution counts raw events per kind. A job contributes once for every event it emitted.
func (e *Engine) StatusDistribution(tbl *events.EventTable) map[events.Kind]int {
	ret := map[events.Kind]int{}
	for _, evt := range tbl.Events() {
		ret[evt.Kind]++
	}
	return ret
}

// SubmissionTimeline counts SUBMITTED events per hour of day (0-23). Hours without submissions are absent.
func (e *Engine) SubmissionTimeline(tbl *events.EventTable) map[int]int {
	ret := map[int]int{}
	for _, evt := range tbl.Events() {
		if evt.Kind != events.KindSubmitted {
			continue
		}
		ret[evt.Timestamp.In(e.location).Hour()]++
	}
	return ret
}

// DurationDistribution returns every numeric duration in the table in file order. Missing and non-numeric values are skipped.
func (e *Engine) DurationDistribution(tbl *events.EventTable) []float64 {
	ret := []float64{}
	for _, evt := range tbl.Events() {
		if evt.DurationMs != nil {
			ret = append(ret, *evt.DurationMs)
		}
	}
	return ret
}

// CoreUtilization counts STARTED events per core. A job started twice counts twice.
// STARTED events without a core are not counted.
func (e *Engine) CoreUtilization(tbl *events.EventTable) map[int]int {
	ret := map[int]int{}
	for _, evt := range tbl.Events() {
		if evt.Kind == events.KindStarted && evt.CoreId != nil {
			ret[*evt.CoreId]++
		}
	}
	return ret
}

// TotalJobs is the number of distinct job ids in the table, including jobs that never started.
func (e *Engine) TotalJobs(tbl *events.EventTable) int {
	seen := map[string]struct{}{}
	for _, evt := range tbl.Events() {
		seen[evt.JobId] = struct{}{}
	}
	return len(seen)
}

// DistinctCores is the number of different cores that appear on STARTED events.
func (e *Engine) DistinctCores(tbl *events.EventTable) int {
	return len(e.CoreUtilization(tbl))
}

// TimeSpan returns the earliest and latest timestamps in the table and the difference between them.
// An empty table has a zero span.
func (e *Engine) TimeSpan(tbl *events.EventTable) (first, last time.Time, span time.Duration) {
	for i, evt := range tbl.Events() {
		if i == 0 || evt.Timestamp.Before(first) {
			first = evt.Timestamp
		}
		if i == 0 || evt.Timestamp.After(last) {
			last = evt.Timestamp
		}
	}
	return first, last, last.Sub(first)
}

// DurationStats describes a set of durations in milliseconds. When Applicable is false there were no values and the other fields are zero.
type DurationStats struct {
	Applicable bool    `json:"applicable"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

func Describe(values []float64) DurationStats {
	if len(values) == 0 {
		return DurationStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return DurationStats{
		Applicable: true,
		Count:      n,
		Mean:       sum / float64(n),
		Median:     median,
		Min:        sorted[0],
		Max:        sorted[n-1],
	}
}

// Summary holds the scalar statistics of a table. It only depends on the table, so computing it twice gives identical results.
type Summary struct {
	TotalJobs     int                 `json:"totalJobs"`
	StatusCounts  map[events.Kind]int `json:"statusCounts"`
	Durations     DurationStats       `json:"durations"`
	DistinctCores int                 `json:"distinctCores"`
	FirstEvent    time.Time           `json:"firstEvent"`
	LastEvent     time.Time           `json:"lastEvent"`
	TimeSpan      time.Duration       `json:"timeSpan"`
}

// Summarize computes all summary scalars. StatusCounts always contains the known kinds, zero-filled, plus any other kind present.
func (e *Engine) Summarize(tbl *events.EventTable) Summary {
	counts := map[events.Kind]int{}
	for _, k := range events.KnownKinds {
		counts[k] = 0
	}
	for k, v := range e.StatusDistribution(tbl) {
		counts[k] = v
	}
	first, last, span := e.TimeSpan(tbl)
	return Summary{
		TotalJobs:     e.TotalJobs(tbl),
		StatusCounts:  counts,
		Durations:     Describe(e.DurationDistribution(tbl)),
		DistinctCores: e.DistinctCores(tbl),
		FirstEvent:    first,
		LastEvent:     last,
		TimeSpan:      span,
	}
}
