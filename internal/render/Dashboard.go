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
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/stats"
)

const (
	dashboardPanelWidth  = 800.0
	dashboardPanelHeight = 600.0
	histogramBins        = 20
)

// DashboardData is the input of the dashboard. Durations are in milliseconds.
type DashboardData struct {
	StatusCounts map[events.Kind]int
	Submissions  map[int]int
	Durations    []float64
	Cores        map[int]int
}

func NewDashboardData(e *stats.Engine, tbl *events.EventTable) DashboardData {
	return DashboardData{
		StatusCounts: e.StatusDistribution(tbl),
		Submissions:  e.SubmissionTimeline(tbl),
		Durations:    e.DurationDistribution(tbl),
		Cores:        e.CoreUtilization(tbl),
	}
}

// RenderDashboard draws the four statistics panels in a 2x2 grid.
func RenderDashboard(w io.Writer, data DashboardData) error {
	doc := &svgDoc{Width: 2 * dashboardPanelWidth, Height: 2 * dashboardPanelHeight}
	statusPanel(doc, 0, 0, data.StatusCounts)
	submissionsPanel(doc, dashboardPanelWidth, 0, data.Submissions)
	durationPanel(doc, 0, dashboardPanelHeight, data.Durations)
	coresPanel(doc, dashboardPanelWidth, dashboardPanelHeight, data.Cores)
	return doc.write(w)
}

// orderedKinds returns the kinds with a non-zero count, known kinds first.
func orderedKinds(counts map[events.Kind]int) []events.Kind {
	var ret []events.Kind
	known := map[events.Kind]bool{}
	for _, k := range events.KnownKinds {
		known[k] = true
		if counts[k] > 0 {
			ret = append(ret, k)
		}
	}
	var other []events.Kind
	for k, v := range counts {
		if !known[k] && v > 0 {
			other = append(other, k)
		}
	}
	sort.Slice(other, func(i, j int) bool { return other[i] < other[j] })
	return append(ret, other...)
}

func statusPanel(doc *svgDoc, x0, y0 float64, counts map[events.Kind]int) {
	doc.text(svgText{X: x0 + dashboardPanelWidth/2, Y: y0 + 30, Size: 16, Bold: true, Text: "Job Status Distribution"})
	kinds := orderedKinds(counts)
	total := 0
	for _, k := range kinds {
		total += counts[k]
	}
	cx, cy := x0+dashboardPanelWidth/2-80, y0+dashboardPanelHeight/2+20
	r := 200.0
	if total == 0 {
		doc.text(svgText{X: cx, Y: cy, Size: 14, Text: "No status data"})
		return
	}
	if len(kinds) == 1 {
		doc.Circles = append(doc.Circles, svgCircle{Cx: cx, Cy: cy, R: r, Fill: palette[0], Stroke: "#ffffff",
			Title: fmt.Sprintf("%s: %d", kinds[0], total)})
		doc.text(svgText{X: cx, Y: cy, Size: 12, Text: "100.0%"})
	} else {
		// Angles start at 12 o'clock and go clockwise.
		angle := -math.Pi / 2
		for i, k := range kinds {
			frac := float64(counts[k]) / float64(total)
			next := angle + frac*2*math.Pi
			large := 0
			if frac > 0.5 {
				large = 1
			}
			d := fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
				formatCoord(cx), formatCoord(cy),
				formatCoord(cx+r*math.Cos(angle)), formatCoord(cy+r*math.Sin(angle)),
				formatCoord(r), formatCoord(r), large,
				formatCoord(cx+r*math.Cos(next)), formatCoord(cy+r*math.Sin(next)))
			doc.Paths = append(doc.Paths, svgPath{D: d, Fill: palette[i%len(palette)], Stroke: "#ffffff", Opacity: 1,
				Title: fmt.Sprintf("%s: %d", k, counts[k])})
			mid := (angle + next) / 2
			doc.text(svgText{X: cx + 0.65*r*math.Cos(mid), Y: cy + 0.65*r*math.Sin(mid), Size: 12,
				Text: fmt.Sprintf("%.1f%%", 100*frac)})
			angle = next
		}
	}
	for i, k := range kinds {
		ly := y0 + 120 + float64(i)*24
		doc.rect(svgRect{X: x0 + dashboardPanelWidth - 200, Y: ly - 8, W: 16, H: 16, Fill: palette[i%len(palette)], Stroke: "#555555"})
		doc.text(svgText{X: x0 + dashboardPanelWidth - 176, Y: ly, Anchor: "start", Text: fmt.Sprintf("%s (%d)", k, counts[k])})
	}
}

// barPanel draws a bar chart with one bar per label inside the panel at x0, y0.
func barPanel(doc *svgDoc, x0, y0 float64, title, xLabel, yLabel string, labels []string, counts []int, fill string) {
	left, right := x0+80, x0+dashboardPanelWidth-40
	top, bottom := y0+60, y0+dashboardPanelHeight-80
	doc.text(svgText{X: x0 + dashboardPanelWidth/2, Y: y0 + 30, Size: 16, Bold: true, Text: title})
	doc.text(svgText{X: (left + right) / 2, Y: bottom + 55, Size: 13, Text: xLabel})
	doc.text(svgText{X: x0 + 25, Y: (top + bottom) / 2, Size: 13, Rotate: -90, Text: yLabel})
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	scale := doc.countAxis(left, top, bottom, maxCount, right-left)
	doc.line(left, bottom, right, bottom, "#000000", 1)
	doc.line(left, top, left, bottom, "#000000", 1)
	if len(labels) == 0 {
		doc.text(svgText{X: (left + right) / 2, Y: (top + bottom) / 2, Size: 14, Text: "No data"})
		return
	}
	slot := (right - left) / float64(len(labels))
	for i, l := range labels {
		x := left + float64(i)*slot
		h := float64(counts[i]) * scale
		doc.rect(svgRect{X: x + slot*0.1, Y: bottom - h, W: slot * 0.8, H: h, Fill: fill, Opacity: 0.8, Stroke: "#333333",
			Title: fmt.Sprintf("%s: %d", l, counts[i])})
		doc.text(svgText{X: x + slot/2, Y: bottom + 15, Size: 10, Text: l})
	}
}

func submissionsPanel(doc *svgDoc, x0, y0 float64, submissions map[int]int) {
	labels := make([]string, 24)
	counts := make([]int, 24)
	for h := 0; h < 24; h++ {
		labels[h] = strconv.Itoa(h)
		counts[h] = submissions[h]
	}
	barPanel(doc, x0, y0, "Job Submissions by Hour", "Hour of Day", "Number of Jobs", labels, counts, "#80b1d3")
}

func coresPanel(doc *svgDoc, x0, y0 float64, cores map[int]int) {
	ids := make([]int, 0, len(cores))
	for c := range cores {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	labels := make([]string, len(ids))
	counts := make([]int, len(ids))
	for i, c := range ids {
		labels[i] = strconv.Itoa(c)
		counts[i] = cores[c]
	}
	barPanel(doc, x0, y0, "CPU Core Utilization", "CPU Core ID", "Number of Jobs", labels, counts, "#fb8072")
}

func durationPanel(doc *svgDoc, x0, y0 float64, durationsMs []float64) {
	left, right := x0+80, x0+dashboardPanelWidth-40
	top, bottom := y0+60, y0+dashboardPanelHeight-80
	doc.text(svgText{X: x0 + dashboardPanelWidth/2, Y: y0 + 30, Size: 16, Bold: true, Text: "Job Duration Distribution"})
	doc.text(svgText{X: (left + right) / 2, Y: bottom + 55, Size: 13, Text: "Duration (seconds)"})
	doc.text(svgText{X: x0 + 25, Y: (top + bottom) / 2, Size: 13, Rotate: -90, Text: "Frequency"})
	if len(durationsMs) == 0 {
		doc.text(svgText{X: (left + right) / 2, Y: (top + bottom) / 2, Size: 14, Text: "No duration data"})
		return
	}
	seconds := make([]float64, len(durationsMs))
	for i, d := range durationsMs {
		seconds[i] = d / 1000
	}
	bins := Histogram(seconds, histogramBins)
	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	scale := doc.countAxis(left, top, bottom, maxCount, right-left)
	doc.line(left, bottom, right, bottom, "#000000", 1)
	doc.line(left, top, left, bottom, "#000000", 1)
	lo, hi := bins[0].Lo, bins[len(bins)-1].Hi
	xScale := (right - left) / (hi - lo)
	for _, b := range bins {
		h := float64(b.Count) * scale
		doc.rect(svgRect{X: left + (b.Lo-lo)*xScale, Y: bottom - h, W: (b.Hi - b.Lo) * xScale, H: h, Fill: "#b3de69", Opacity: 0.7, Stroke: "#000000",
			Title: fmt.Sprintf("%.3fs - %.3fs: %d", b.Lo, b.Hi, b.Count)})
	}
	step := niceStep(hi-lo, 8)
	for v := math.Ceil(lo/step) * step; v <= hi+step/1e6; v += step {
		doc.text(svgText{X: left + (v-lo)*xScale, Y: bottom + 15, Size: 10, Text: strconv.FormatFloat(v, 'g', 4, 64)})
	}
}
