package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/stats"
)

var t0 = time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func requireWellFormed(t *testing.T, b []byte) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("got malformed svg: %v\n%s", err, b)
		}
	}
}

func sampleTable() *events.EventTable {
	return events.TableFromEvents([]events.Event{
		{JobId: "1", Kind: events.KindSubmitted, Timestamp: at(0), JobName: "sim"},
		{JobId: "1", Kind: events.KindStarted, Timestamp: at(1), CoreId: intPtr(0)},
		{JobId: "1", Kind: events.KindCompleted, Timestamp: at(3), DurationMs: floatPtr(2000)},
		{JobId: "2", Kind: events.KindSubmitted, Timestamp: at(0)},
		{JobId: "2", Kind: events.KindStarted, Timestamp: at(2), CoreId: intPtr(1)},
		{JobId: "2", Kind: events.KindFailed, Timestamp: at(4), DurationMs: floatPtr(1500)},
		{JobId: "3", Kind: events.KindSubmitted, Timestamp: at(5)},
	})
}

func TestRenderTimeline(t *testing.T) {
	res := intervals.NewReconstructor(intervals.FixedClock{T: at(10)}).Reconstruct(sampleTable())
	var b bytes.Buffer
	err := RenderTimeline(&b, res.Intervals, TimelineOptions{})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	s := b.String()
	for _, want := range []string{"Job Execution Gantt Chart", ">J1<", ">J2<", "CPU Core ID"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected timeline to contain %q", want)
		}
	}
	if strings.Contains(s, ">J3<") {
		t.Fatalf("did not expect an unstarted job in the timeline")
	}
	if strings.Count(s, "<rect") != 3 {
		t.Fatalf("expected a background and two bars, got %v rects", strings.Count(s, "<rect"))
	}
}

func TestRenderTimeline_Empty(t *testing.T) {
	var b bytes.Buffer
	err := RenderTimeline(&b, nil, TimelineOptions{Title: "Nothing"})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	// Cores 0 through 4 are shown when there are no intervals.
	if !strings.Contains(b.String(), ">4<") || !strings.Contains(b.String(), "Nothing") {
		t.Fatalf("expected the default core axis and the title, got %s", b.String())
	}
}

func TestRenderTimeline_EndBeforeStart(t *testing.T) {
	ivs := []intervals.JobInterval{{
		JobId:   "9",
		JobName: intervals.Observed("backwards"),
		CoreId:  intervals.Observed(1),
		Start:   at(5),
		End:     at(2),
		Status:  intervals.Status(events.KindCompleted),
	}}
	var b bytes.Buffer
	err := RenderTimeline(&b, ivs, TimelineOptions{})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	if strings.Contains(b.String(), `width="-`) {
		t.Fatalf("expected no negative widths")
	}
}

func TestRenderDashboard(t *testing.T) {
	tbl := sampleTable()
	var b bytes.Buffer
	err := RenderDashboard(&b, NewDashboardData(stats.NewEngine(time.UTC), tbl))
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	s := b.String()
	for _, want := range []string{"Job Status Distribution", "Job Submissions by Hour", "Job Duration Distribution", "CPU Core Utilization", "SUBMITTED: 3"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected dashboard to contain %q", want)
		}
	}
}

func TestRenderDashboard_Empty(t *testing.T) {
	var b bytes.Buffer
	err := RenderDashboard(&b, DashboardData{})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	if !strings.Contains(b.String(), "No duration data") || !strings.Contains(b.String(), "No status data") {
		t.Fatalf("expected empty panels to say so, got %s", b.String())
	}
}

func TestRenderDashboard_SingleStatus(t *testing.T) {
	var b bytes.Buffer
	err := RenderDashboard(&b, DashboardData{StatusCounts: map[events.Kind]int{events.KindStarted: 4}})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if !strings.Contains(b.String(), "<circle") || !strings.Contains(b.String(), "100.0%") {
		t.Fatalf("expected a full circle for a single status")
	}
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4}, 4)
	if len(bins) != 4 {
		t.Fatalf("expected 4 bins but got %v", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 5 {
		t.Fatalf("expected every value to be counted, got %v", total)
	}
	if bins[3].Count != 2 || bins[3].Hi != 4 {
		t.Fatalf("expected the last bin to include the maximum, got %+v", bins[3])
	}
}

func TestHistogram_SingleValue(t *testing.T) {
	bins := Histogram([]float64{2, 2}, 20)
	if bins[0].Lo != 1.5 || bins[19].Hi != 2.5 {
		t.Fatalf("expected the range to be widened, got %v - %v", bins[0].Lo, bins[19].Hi)
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 2 {
		t.Fatalf("expected 2 values to be counted, got %v", total)
	}
}

func TestHistogram_Empty(t *testing.T) {
	if Histogram(nil, 20) != nil {
		t.Fatalf("expected no bins for no values")
	}
}

func TestWriteReport(t *testing.T) {
	tbl := sampleTable()
	var b bytes.Buffer
	err := WriteReport(&b, ReportData{
		RunID:       "run-1",
		Summary:     stats.NewEngine(time.UTC).Summarize(tbl),
		RunningJobs: 0,
		GeneratedAt: at(100),
	})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	s := b.String()
	for _, want := range []string{
		"Job Execution Summary Report\n" + strings.Repeat("=", 50),
		"Run ID: run-1",
		"Total Jobs Processed: 3",
		"  SUBMITTED: 3\n",
		"  KILLED: 0\n",
		"  Average Duration: 1750.00 ms",
		"  Median Duration: 1750.00 ms",
		"  CPU Cores Used: 2",
		"Time Span: 5s",
		"Report generated on: 2024-03-05 14:01:40.000 UTC",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected report to contain %q, got:\n%s", want, s)
		}
	}
}

func TestWriteReport_NoDurations(t *testing.T) {
	tbl := events.TableFromEvents([]events.Event{{JobId: "1", Kind: events.KindSubmitted, Timestamp: at(0)}})
	var b bytes.Buffer
	err := WriteReport(&b, ReportData{Summary: stats.NewEngine(nil).Summarize(tbl), GeneratedAt: at(0)})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if !strings.Contains(b.String(), "not applicable") {
		t.Fatalf("expected duration statistics to be not applicable, got:\n%s", b.String())
	}
}

func TestRenderTimeline_HugeCoreId(t *testing.T) {
	ivs := []intervals.JobInterval{
		{JobId: "1", JobName: intervals.Observed("a"), CoreId: intervals.Observed(0), Start: at(0), End: at(1), Status: intervals.Status(events.KindCompleted)},
		{JobId: "2", JobName: intervals.Observed("b"), CoreId: intervals.Observed(2000000000), Start: at(1), End: at(2), Status: intervals.Status(events.KindCompleted)},
	}
	var b bytes.Buffer
	err := RenderTimeline(&b, ivs, TimelineOptions{})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	requireWellFormed(t, b.Bytes())
	s := b.String()
	if !strings.Contains(s, ">2000000000<") || !strings.Contains(s, ">0<") {
		t.Fatalf("expected rows for both cores")
	}
	if strings.Contains(s, ">1<") {
		t.Fatalf("expected only the cores that appear to get a row")
	}
	if strings.Count(s, "<line") > 20 {
		t.Fatalf("expected a small number of grid lines, got %v", strings.Count(s, "<line"))
	}
}

func TestCoreRows(t *testing.T) {
	if rows := coreRows(nil); len(rows) != 5 || rows[4] != 4 {
		t.Fatalf("expected cores 0-4 when there are no intervals, got %v", rows)
	}
	dense := coreRows([]intervals.JobInterval{{CoreId: intervals.Observed(7)}})
	if len(dense) != 8 || dense[0] != 0 || dense[7] != 7 {
		t.Fatalf("expected cores 0-7, got %v", dense)
	}
	sparse := coreRows([]intervals.JobInterval{{CoreId: intervals.Observed(5000)}, {CoreId: intervals.Observed(3)}, {CoreId: intervals.Observed(5000)}})
	if len(sparse) != 2 || sparse[0] != 3 || sparse[1] != 5000 {
		t.Fatalf("expected only cores 3 and 5000, got %v", sparse)
	}
}
