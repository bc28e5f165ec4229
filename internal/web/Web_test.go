package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackbister/jobsuck/internal/config"
	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/stats"
	"go.uber.org/zap"
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

type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time {
	return c.now
}

func newTestWeb(clock intervals.Clock) Web {
	gin.SetMode(gin.TestMode)
	tbl := events.TableFromEvents([]events.Event{
		{JobId: "1", Kind: events.KindSubmitted, Timestamp: at(0)},
		{JobId: "1", Kind: events.KindStarted, Timestamp: at(1), CoreId: intPtr(0)},
		{JobId: "1", Kind: events.KindCompleted, Timestamp: at(3), DurationMs: floatPtr(2000)},
		{JobId: "2", Kind: events.KindSubmitted, Timestamp: at(0)},
		{JobId: "2", Kind: events.KindStarted, Timestamp: at(2), CoreId: intPtr(1)},
		{JobId: "3", Kind: events.KindSubmitted, Timestamp: at(4)},
	})
	return NewWeb(WebParams{
		Cfg:           config.Default(),
		Table:         tbl,
		Engine:        stats.NewEngine(time.UTC),
		Reconstructor: intervals.NewReconstructor(clock),
		Clock:         clock,
		RunId:         "test-run",
		Logger:        zap.NewNop(),
	})
}

func get(t *testing.T, w Web, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	if rec.Code != 200 {
		t.Fatalf("got unexpected status %v for %v: %v", rec.Code, path, rec.Body.String())
	}
	return rec
}

func TestSummary(t *testing.T) {
	w := newTestWeb(intervals.FixedClock{T: at(10)})
	rec := get(t, w, "/api/v1/summary")
	var res SummaryResponse
	err := json.Unmarshal(rec.Body.Bytes(), &res)
	if err != nil {
		t.Fatalf("got error when decoding response: %v", err)
	}
	if res.RunId != "test-run" || res.Summary.TotalJobs != 3 || res.RunningJobs != 1 {
		t.Fatalf("got unexpected summary: %+v", res)
	}
	if len(res.UnstartedJobs) != 1 || res.UnstartedJobs[0] != "3" {
		t.Fatalf("expected job 3 to be unstarted, got %v", res.UnstartedJobs)
	}
	if res.Summary.StatusCounts[events.KindKilled] != 0 || res.Summary.StatusCounts[events.KindSubmitted] != 3 {
		t.Fatalf("got unexpected status counts: %v", res.Summary.StatusCounts)
	}
}

func TestIntervals_RecomputedPerRequest(t *testing.T) {
	clock := &mutableClock{now: at(10)}
	w := newTestWeb(clock)
	var first, second []intervals.JobInterval
	err := json.Unmarshal(get(t, w, "/api/v1/intervals").Body.Bytes(), &first)
	if err != nil {
		t.Fatalf("got error when decoding response: %v", err)
	}
	clock.now = at(20)
	err = json.Unmarshal(get(t, w, "/api/v1/intervals").Body.Bytes(), &second)
	if err != nil {
		t.Fatalf("got error when decoding response: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 intervals, got %v and %v", len(first), len(second))
	}
	if !first[1].End.Equal(at(10)) || !second[1].End.Equal(at(20)) {
		t.Fatalf("expected the running job to end at the request time, got %v and %v", first[1].End, second[1].End)
	}
	if first[1].Status != intervals.StatusRunning || first[1].CoreId.Value != 1 {
		t.Fatalf("got unexpected running interval: %+v", first[1])
	}
}

func TestStats(t *testing.T) {
	w := newTestWeb(intervals.FixedClock{T: at(10)})

	var status map[string]int
	err := json.Unmarshal(get(t, w, "/api/v1/stats/status").Body.Bytes(), &status)
	if err != nil || status["SUBMITTED"] != 3 || status["STARTED"] != 2 {
		t.Fatalf("got unexpected status distribution %v (err=%v)", status, err)
	}

	var submissions map[string]int
	err = json.Unmarshal(get(t, w, "/api/v1/stats/submissions").Body.Bytes(), &submissions)
	if err != nil || submissions["14"] != 3 || len(submissions) != 1 {
		t.Fatalf("got unexpected submissions %v (err=%v)", submissions, err)
	}

	var durations DurationsResponse
	err = json.Unmarshal(get(t, w, "/api/v1/stats/durations").Body.Bytes(), &durations)
	if err != nil || len(durations.Values) != 1 || durations.Stats.Mean != 2000 || len(durations.Histogram) != 20 {
		t.Fatalf("got unexpected durations %+v (err=%v)", durations, err)
	}

	var cores map[string]int
	err = json.Unmarshal(get(t, w, "/api/v1/stats/cores").Body.Bytes(), &cores)
	if err != nil || cores["0"] != 1 || cores["1"] != 1 {
		t.Fatalf("got unexpected cores %v (err=%v)", cores, err)
	}
}

func TestRenderedEndpoints(t *testing.T) {
	w := newTestWeb(intervals.FixedClock{T: at(10)})
	rec := get(t, w, "/timeline.svg")
	if rec.Header().Get("Content-Type") != "image/svg+xml" || !strings.Contains(rec.Body.String(), ">J2<") {
		t.Fatalf("got unexpected timeline response: %v", rec.Header())
	}
	rec = get(t, w, "/dashboard.svg")
	if !strings.Contains(rec.Body.String(), "CPU Core Utilization") {
		t.Fatalf("got unexpected dashboard")
	}
	rec = get(t, w, "/report.txt")
	if !strings.Contains(rec.Body.String(), "Running Jobs: 1") || !strings.Contains(rec.Body.String(), "Run ID: test-run") {
		t.Fatalf("got unexpected report: %v", rec.Body.String())
	}
}
