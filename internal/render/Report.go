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

package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/stats"
)

type ReportData struct {
	Title   string
	RunID   string
	Summary stats.Summary
	// RunningJobs is the number of reconstructed intervals without a terminal event.
	RunningJobs int
	GeneratedAt time.Time
	Location    *time.Location
}

// WriteReport writes the plain text summary report.
func WriteReport(w io.Writer, data ReportData) error {
	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}
	title := data.Title
	if title == "" {
		title = "Job Execution Summary Report"
	}
	s := data.Summary
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 50))
	if data.RunID != "" {
		fmt.Fprintf(bw, "Run ID: %s\n\n", data.RunID)
	}
	fmt.Fprintf(bw, "Total Jobs Processed: %d\n", s.TotalJobs)

	fmt.Fprintf(bw, "\nJob Status Breakdown:\n")
	for _, k := range reportKinds(s.StatusCounts) {
		fmt.Fprintf(bw, "  %s: %d\n", k, s.StatusCounts[k])
	}

	fmt.Fprintf(bw, "\nExecution Time Statistics:\n")
	if s.Durations.Applicable {
		fmt.Fprintf(bw, "  Average Duration: %.2f ms\n", s.Durations.Mean)
		fmt.Fprintf(bw, "  Median Duration: %.2f ms\n", s.Durations.Median)
		fmt.Fprintf(bw, "  Min Duration: %.2f ms\n", s.Durations.Min)
		fmt.Fprintf(bw, "  Max Duration: %.2f ms\n", s.Durations.Max)
	} else {
		fmt.Fprintf(bw, "  not applicable\n")
	}

	fmt.Fprintf(bw, "\nResource Utilization:\n")
	fmt.Fprintf(bw, "  CPU Cores Used: %d\n", s.DistinctCores)
	fmt.Fprintf(bw, "  Running Jobs: %d\n", data.RunningJobs)

	fmt.Fprintf(bw, "\nTime Span: %v\n", s.TimeSpan)
	if !s.FirstEvent.IsZero() {
		fmt.Fprintf(bw, "  First Event: %s\n", s.FirstEvent.In(loc).Format("2006-01-02 15:04:05.000"))
		fmt.Fprintf(bw, "  Last Event: %s\n", s.LastEvent.In(loc).Format("2006-01-02 15:04:05.000"))
	}

	fmt.Fprintf(bw, "\nReport generated on: %s\n", data.GeneratedAt.In(loc).Format("2006-01-02 15:04:05.000 MST"))
	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// reportKinds returns the known kinds in their usual order followed by any other kinds in the counts.
func reportKinds(counts map[events.Kind]int) []events.Kind {
	ret := make([]events.Kind, 0, len(counts))
	known := map[events.Kind]bool{}
	for _, k := range events.KnownKinds {
		known[k] = true
		ret = append(ret, k)
	}
	for _, k := range orderedKinds(counts) {
		if !known[k] {
			ret = append(ret, k)
		}
	}
	return ret
}
