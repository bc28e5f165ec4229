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

package intervals

import (
	"fmt"
	"sort"
	"time"

	"github.com/jackbister/jobsuck/internal/events"
)

// Status is the terminal kind of a job, or StatusRunning if the job has no terminal event.
type Status string

const StatusRunning Status = "RUNNING"

// JobInterval is the execution window [Start, End) of one job on one core.
type JobInterval struct {
	JobId   string           `json:"jobId"`
	JobName Resolved[string] `json:"jobName"`
	CoreId  Resolved[int]    `json:"coreId"`
	Start   time.Time        `json:"start"`
	// End is the reconstruction time for running jobs, so it changes between runs.
	End    time.Time `json:"end"`
	Status Status    `json:"status"`
}

// Duration may be negative if the log has a terminal event timestamped before the start.
func (i JobInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i JobInterval) IsRunning() bool {
	return i.Status == StatusRunning
}

type IssueKind string

const (
	IssueMultipleStarts    IssueKind = "MULTIPLE_STARTS"
	IssueMultipleTerminals IssueKind = "MULTIPLE_TERMINALS"
	IssueEndBeforeStart    IssueKind = "END_BEFORE_START"
)

// Issue is a data-quality problem that was resolved by policy instead of failing.
type Issue struct {
	JobId  string    `json:"jobId"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}

type Result struct {
	// Intervals are sorted by start time, then job id.
	Intervals []JobInterval
	Issues    []Issue
	// Unstarted holds the ids of jobs that were dropped because they have no STARTED event, in order of first appearance.
	Unstarted []string
}

type Reconstructor struct {
	clock Clock
}

func NewReconstructor(clock Clock) *Reconstructor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Reconstructor{clock: clock}
}

type jobGroup struct {
	id     string
	events []events.Event
}

// Reconstruct derives one JobInterval per job with a STARTED event.
//
// The earliest STARTED event is the start. The earliest terminal event is the end, with ties broken by
// COMPLETED, FAILED, KILLED in that order. Jobs without a terminal event are RUNNING and end at the clock's
// current time, read once per call.
func (r *Reconstructor) Reconstruct(tbl *events.EventTable) Result {
	now := r.clock.Now()
	groups := groupByJob(tbl.Events())
	ret := Result{
		Intervals: []JobInterval{},
		Issues:    []Issue{},
		Unstarted: []string{},
	}
	for _, g := range groups {
		var start *events.Event
		var terminal *events.Event
		numStarts, numTerminals := 0, 0
		for i := range g.events {
			evt := &g.events[i]
			if evt.Kind == events.KindStarted {
				numStarts++
				if start == nil || evt.Timestamp.Before(start.Timestamp) {
					start = evt
				}
			} else if evt.Kind.IsTerminal() {
				numTerminals++
				if terminal == nil || terminalBefore(evt, terminal) {
					terminal = evt
				}
			}
		}
		if start == nil {
			ret.Unstarted = append(ret.Unstarted, g.id)
			continue
		}
		if numStarts > 1 {
			ret.Issues = append(ret.Issues, Issue{
				JobId:  g.id,
				Kind:   IssueMultipleStarts,
				Detail: fmt.Sprintf("job has %d STARTED events, using the earliest at %v", numStarts, start.Timestamp),
			})
		}
		if numTerminals > 1 {
			ret.Issues = append(ret.Issues, Issue{
				JobId:  g.id,
				Kind:   IssueMultipleTerminals,
				Detail: fmt.Sprintf("job has %d terminal events, using %v at %v", numTerminals, terminal.Kind, terminal.Timestamp),
			})
		}

		interval := JobInterval{
			JobId:   g.id,
			JobName: resolveJobName(g, start),
			CoreId:  resolveCoreId(g, start),
			Start:   start.Timestamp,
			End:     now,
			Status:  StatusRunning,
		}
		if terminal != nil {
			interval.End = terminal.Timestamp
			interval.Status = Status(terminal.Kind)
		}
		if interval.End.Before(interval.Start) {
			ret.Issues = append(ret.Issues, Issue{
				JobId:  g.id,
				Kind:   IssueEndBeforeStart,
				Detail: fmt.Sprintf("job ends at %v which is before its start at %v", interval.End, interval.Start),
			})
		}
		ret.Intervals = append(ret.Intervals, interval)
	}
	sort.SliceStable(ret.Intervals, func(i, j int) bool {
		a, b := ret.Intervals[i], ret.Intervals[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.JobId < b.JobId
	})
	return ret
}

func terminalBefore(a, b *events.Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Kind.TerminalRank() < b.Kind.TerminalRank()
}

func groupByJob(evts []events.Event) []jobGroup {
	idx := map[string]int{}
	ret := []jobGroup{}
	for _, evt := range evts {
		i, ok := idx[evt.JobId]
		if !ok {
			i = len(ret)
			idx[evt.JobId] = i
			ret = append(ret, jobGroup{id: evt.JobId})
		}
		ret[i].events = append(ret[i].events, evt)
	}
	return ret
}

// The STARTED event is preferred, then the other events of the job in file order.
func resolveJobName(g jobGroup, start *events.Event) Resolved[string] {
	if start.JobName != "" {
		return Observed(start.JobName)
	}
	for _, evt := range g.events {
		if evt.JobName != "" {
			return Observed(evt.JobName)
		}
	}
	return Defaulted("Job "+g.id, ReasonNoJobName)
}

func resolveCoreId(g jobGroup, start *events.Event) Resolved[int] {
	if start.CoreId != nil {
		return Observed(*start.CoreId)
	}
	for _, evt := range g.events {
		if evt.CoreId != nil {
			return Observed(*evt.CoreId)
		}
	}
	return Defaulted(0, ReasonNoCoreId)
}
