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
	"html/template"
	"io"
	"math"
	"strconv"
)

// The Set3 qualitative palette, reused cyclically for jobs.
var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

type svgRect struct {
	X, Y, W, H float64
	Fill       string
	Opacity    float64
	Stroke     string
	Title      string
}

type svgLine struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	Opacity        float64
}

type svgText struct {
	X, Y   float64
	Anchor string
	Size   float64
	Bold   bool
	Rotate float64
	Text   string
}

type svgPath struct {
	D       string
	Fill    string
	Stroke  string
	Opacity float64
	Title   string
}

type svgCircle struct {
	Cx, Cy, R float64
	Fill      string
	Stroke    string
	Title     string
}

// svgDoc is a flat list of shapes. Everything is drawn in the order paths, circles, rects, lines, texts.
type svgDoc struct {
	Width, Height float64
	Rects         []svgRect
	Lines         []svgLine
	Texts         []svgText
	Paths         []svgPath
	Circles       []svgCircle
}

func (d *svgDoc) rect(r svgRect) {
	if r.Opacity == 0 {
		r.Opacity = 1
	}
	d.Rects = append(d.Rects, r)
}

func (d *svgDoc) line(x1, y1, x2, y2 float64, stroke string, opacity float64) {
	d.Lines = append(d.Lines, svgLine{X1: x1, Y1: y1, X2: x2, Y2: y2, Stroke: stroke, Opacity: opacity})
}

func (d *svgDoc) text(t svgText) {
	if t.Anchor == "" {
		t.Anchor = "middle"
	}
	if t.Size == 0 {
		t.Size = 12
	}
	d.Texts = append(d.Texts, t)
}

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{"f": formatCoord}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{f .Width}}" height="{{f .Height}}" viewBox="0 0 {{f .Width}} {{f .Height}}" font-family="sans-serif">
<rect x="0" y="0" width="{{f .Width}}" height="{{f .Height}}" fill="#ffffff"/>
{{- range .Paths}}
<path d="{{.D}}" fill="{{.Fill}}" stroke="{{.Stroke}}" fill-opacity="{{f .Opacity}}">{{if .Title}}<title>{{.Title}}</title>{{end}}</path>
{{- end}}
{{- range .Circles}}
<circle cx="{{f .Cx}}" cy="{{f .Cy}}" r="{{f .R}}" fill="{{.Fill}}" stroke="{{.Stroke}}">{{if .Title}}<title>{{.Title}}</title>{{end}}</circle>
{{- end}}
{{- range .Rects}}
<rect x="{{f .X}}" y="{{f .Y}}" width="{{f .W}}" height="{{f .H}}" fill="{{.Fill}}" fill-opacity="{{f .Opacity}}"{{if .Stroke}} stroke="{{.Stroke}}"{{end}}>{{if .Title}}<title>{{.Title}}</title>{{end}}</rect>
{{- end}}
{{- range .Lines}}
<line x1="{{f .X1}}" y1="{{f .Y1}}" x2="{{f .X2}}" y2="{{f .Y2}}" stroke="{{.Stroke}}" stroke-opacity="{{f .Opacity}}"/>
{{- end}}
{{- range .Texts}}
<text x="{{f .X}}" y="{{f .Y}}" text-anchor="{{.Anchor}}" dominant-baseline="middle" font-size="{{f .Size}}"{{if .Bold}} font-weight="bold"{{end}}{{if .Rotate}} transform="rotate({{f .Rotate}} {{f .X}} {{f .Y}})"{{end}}>{{.Text}}</text>
{{- end}}
</svg>
`))

func (d *svgDoc) write(w io.Writer) error {
	err := svgTemplate.Execute(w, d)
	if err != nil {
		return fmt.Errorf("failed to render svg: %w", err)
	}
	return nil
}

func formatCoord(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// niceStep returns a step of the form 1, 2 or 5 times a power of ten that divides span into at most maxTicks parts.
func niceStep(span float64, maxTicks int) float64 {
	if span <= 0 || maxTicks <= 0 {
		return 1
	}
	raw := span / float64(maxTicks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

// countAxis draws a vertical axis from 0 to max on the left edge of a plot area and returns the scale in pixels per unit.
func (d *svgDoc) countAxis(x, top, bottom float64, max int, width float64) float64 {
	if max <= 0 {
		max = 1
	}
	step := niceStep(float64(max), 5)
	if step < 1 {
		step = 1
	}
	axisMax := math.Ceil(float64(max)/step) * step
	scale := (bottom - top) / axisMax
	for v := 0.0; v <= axisMax+step/2; v += step {
		y := bottom - v*scale
		d.line(x, y, x+width, y, "#000000", 0.15)
		d.text(svgText{X: x - 6, Y: y, Anchor: "end", Size: 10, Text: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return scale
}
