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
	"sort"
	"strconv"
	"time"

	"github.com/jackbister/jobsuck/internal/intervals"
)

const (
	ganttWidth      = 1400.0
	ganttMarginLeft = 90.0
	ganttMarginTop  = 60.0
	ganttMarginBot  = 80.0
	ganttRowHeight  = 44.0
	ganttBarHeight  = 0.6 * ganttRowHeight
	// When no interval has a core the axis still shows cores 0-4.
	ganttDefaultMaxCore = 4
	// Above this core id only the cores that appear get a row.
	ganttMaxDenseCore = 255
)

type TimelineOptions struct {
	Title string
	// Location is used for the time axis labels.
	Location *time.Location
}

// RenderTimeline draws one horizontal bar per interval, on the row of its core and spanning [Start, End).
// Bars of overlapping intervals on the same core are drawn on top of each other.
func RenderTimeline(w io.Writer, ivs []intervals.JobInterval, opts TimelineOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	title := opts.Title
	if title == "" {
		title = "Job Execution Gantt Chart"
	}

	cores := coreRows(ivs)
	numRows := len(cores)
	plotTop := ganttMarginTop
	plotBottom := plotTop + float64(numRows)*ganttRowHeight
	plotLeft := ganttMarginLeft
	plotRight := ganttWidth - 40
	doc := &svgDoc{Width: ganttWidth, Height: plotBottom + ganttMarginBot}
	doc.text(svgText{X: ganttWidth / 2, Y: 25, Size: 18, Bold: true, Text: title})

	var first, last time.Time
	for i, iv := range ivs {
		lo, hi := iv.Start, iv.End
		if hi.Before(lo) {
			lo, hi = hi, lo
		}
		if i == 0 || lo.Before(first) {
			first = lo
		}
		if i == 0 || hi.After(last) {
			last = hi
		}
	}
	span := last.Sub(first).Seconds()
	if span <= 0 {
		span = 1
	}
	xScale := (plotRight - plotLeft) / span
	xOf := func(t time.Time) float64 {
		return plotLeft + t.Sub(first).Seconds()*xScale
	}

	rowOf := make(map[int]int, len(cores))
	for i, core := range cores {
		rowOf[core] = i
	}
	// Rows are drawn bottom-up so that the lowest core is at the bottom like a normal y axis.
	rowCenter := func(core int) float64 {
		return plotBottom - (float64(rowOf[core])+0.5)*ganttRowHeight
	}
	for _, core := range cores {
		y := rowCenter(core)
		doc.line(plotLeft, y, plotRight, y, "#000000", 0.1)
		doc.text(svgText{X: plotLeft - 10, Y: y, Anchor: "end", Size: 11, Text: strconv.Itoa(core)})
	}
	doc.text(svgText{X: 25, Y: (plotTop + plotBottom) / 2, Size: 13, Rotate: -90, Text: "CPU Core ID"})

	if len(ivs) > 0 {
		step := time.Duration(niceStep(span, 8) * float64(time.Second))
		if step < time.Millisecond {
			step = time.Millisecond
		}
		for t := first.Truncate(step); !t.After(last); t = t.Add(step) {
			if t.Before(first) {
				continue
			}
			x := xOf(t)
			doc.line(x, plotTop, x, plotBottom, "#000000", 0.1)
			doc.text(svgText{X: x, Y: plotBottom + 20, Size: 10, Rotate: -45, Text: t.In(loc).Format("15:04:05")})
		}
	}
	doc.text(svgText{X: (plotLeft + plotRight) / 2, Y: plotBottom + 65, Size: 13, Text: "Time"})
	doc.line(plotLeft, plotBottom, plotRight, plotBottom, "#000000", 1)
	doc.line(plotLeft, plotTop, plotLeft, plotBottom, "#000000", 1)

	for i, iv := range ivs {
		lo, hi := iv.Start, iv.End
		if hi.Before(lo) {
			lo, hi = hi, lo
		}
		x := xOf(lo)
		width := xOf(hi) - x
		if width < 1 {
			width = 1
		}
		y := rowCenter(iv.CoreId.Value)
		doc.rect(svgRect{
			X:       x,
			Y:       y - ganttBarHeight/2,
			W:       width,
			H:       ganttBarHeight,
			Fill:    palette[i%len(palette)],
			Opacity: 0.8,
			Stroke:  "#555555",
			Title:   intervalTooltip(iv, loc),
		})
		doc.text(svgText{X: x + width/2, Y: y, Size: 9, Bold: true, Text: "J" + iv.JobId})
	}
	return doc.write(w)
}

// coreRows returns the cores that get a row, lowest first: every core from 0 to the highest core id,
// or only the cores that appear if the highest id is above ganttMaxDenseCore.
func coreRows(ivs []intervals.JobInterval) []int {
	maxCore := ganttDefaultMaxCore
	if len(ivs) > 0 {
		maxCore = 0
		for _, iv := range ivs {
			if iv.CoreId.Value > maxCore {
				maxCore = iv.CoreId.Value
			}
		}
	}
	if maxCore <= ganttMaxDenseCore {
		ret := make([]int, maxCore+1)
		for i := range ret {
			ret[i] = i
		}
		return ret
	}
	seen := map[int]bool{}
	var ret []int
	for _, iv := range ivs {
		if !seen[iv.CoreId.Value] {
			seen[iv.CoreId.Value] = true
			ret = append(ret, iv.CoreId.Value)
		}
	}
	sort.Ints(ret)
	return ret
}

func intervalTooltip(iv intervals.JobInterval, loc *time.Location) string {
	s := fmt.Sprintf("%s (ID: %s)\ncore: %v\nstatus: %s\nstart: %s\nend: %s\nduration: %v",
		iv.JobName.Value, iv.JobId, iv.CoreId, iv.Status,
		iv.Start.In(loc).Format("2006-01-02 15:04:05.000"), iv.End.In(loc).Format("2006-01-02 15:04:05.000"), iv.Duration())
	if iv.IsRunning() {
		s += " (still running)"
	}
	return s
}
