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

package events

import (
	"math"
	"strconv"

	"github.com/jackbister/jobsuck/internal/parser"
)

const (
	ColumnJobId      = "JobID"
	ColumnEvent      = "Event"
	ColumnTimestamp  = "Timestamp"
	ColumnJobName    = "JobName"
	ColumnCoreId     = "CoreID"
	ColumnDurationMs = "Duration(ms)"
)

var mandatoryColumns = []string{ColumnJobId, ColumnEvent, ColumnTimestamp}

// The job logger writes this for jobs without a name.
const noJobName = "-"

// EventTable holds every row of a log in file order. It is never modified after construction.
type EventTable struct {
	events []Event
	// skippedRows are the 1-based rows without a job id or event kind.
	skippedRows []int
}

// NewEventTable converts the raw rows of a log into events.
// It returns a *MalformedLogError if a mandatory column is missing or any timestamp fails to parse.
// A table with the mandatory columns and zero rows is valid.
// Rows with an empty JobID or Event cell are left out and listed by SkippedRows.
func NewEventTable(tbl *parser.Table, tp parser.TimeParser) (*EventTable, error) {
	for _, c := range mandatoryColumns {
		if tbl.ColumnIndex(c) == -1 {
			return nil, &MalformedLogError{Reason: "missing mandatory column '" + c + "'"}
		}
	}
	jobIdIdx := tbl.ColumnIndex(ColumnJobId)
	eventIdx := tbl.ColumnIndex(ColumnEvent)
	tsIdx := tbl.ColumnIndex(ColumnTimestamp)
	nameIdx := tbl.ColumnIndex(ColumnJobName)
	coreIdx := tbl.ColumnIndex(ColumnCoreId)
	durIdx := tbl.ColumnIndex(ColumnDurationMs)
	known := map[int]struct{}{jobIdIdx: {}, eventIdx: {}, tsIdx: {}, nameIdx: {}, coreIdx: {}, durIdx: {}}

	ret := make([]Event, 0, len(tbl.Rows))
	var skipped []int
	for i, row := range tbl.Rows {
		if tbl.Cell(row, jobIdIdx) == "" || tbl.Cell(row, eventIdx) == "" {
			skipped = append(skipped, i+1)
			continue
		}
		rawTs := tbl.Cell(row, tsIdx)
		ts, err := tp.Parse(rawTs)
		if err != nil {
			return nil, &MalformedLogError{Reason: "unparseable timestamp '" + rawTs + "'", Row: i + 1, Err: err}
		}
		evt := Event{
			JobId:       tbl.Cell(row, jobIdIdx),
			Kind:        Kind(tbl.Cell(row, eventIdx)),
			Timestamp:   ts,
			JobName:     parseJobName(tbl.Cell(row, nameIdx)),
			CoreId:      parseCoreId(tbl.Cell(row, coreIdx)),
			RawDuration: tbl.Cell(row, durIdx),
		}
		evt.DurationMs = parseDuration(evt.RawDuration)
		for ci, c := range tbl.Columns {
			if _, ok := known[ci]; ok {
				continue
			}
			v := tbl.Cell(row, ci)
			if v == "" || c == "" {
				continue
			}
			if evt.Attributes == nil {
				evt.Attributes = map[string]string{}
			}
			evt.Attributes[c] = v
		}
		ret = append(ret, evt)
	}
	return &EventTable{events: ret, skippedRows: skipped}, nil
}

// TableFromEvents wraps already parsed events, e.g. events read back from a database.
func TableFromEvents(evts []Event) *EventTable {
	cp := make([]Event, len(evts))
	copy(cp, evts)
	return &EventTable{events: cp}
}

// SkippedRows returns the 1-based data rows that were left out because their JobID or Event cell was empty.
func (t *EventTable) SkippedRows() []int {
	return t.skippedRows
}

func (t *EventTable) Len() int {
	return len(t.events)
}

// Events returns the rows in file order. The returned slice is a copy, but the events share their pointer fields with the table and must not be modified.
func (t *EventTable) Events() []Event {
	ret := make([]Event, len(t.events))
	copy(ret, t.events)
	return ret
}

func parseJobName(s string) string {
	if s == noJobName {
		return ""
	}
	return s
}

// parseCoreId accepts integral values written either as integers or as floats ("2.0"). Negative values mean the job was never assigned a core.
func parseCoreId(s string) *int {
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 {
			return nil
		}
		return &i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return nil
	}
	i := int(f)
	return &i
}

func parseDuration(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}
