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

package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackbister/jobsuck/internal/config"
	"github.com/jackbister/jobsuck/internal/events"
	"github.com/jackbister/jobsuck/internal/intervals"
	"github.com/jackbister/jobsuck/internal/render"
	"github.com/jackbister/jobsuck/internal/stats"
	"github.com/jackbister/jobsuck/internal/util"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Web interface {
	Serve() error
	Handler() http.Handler
}

type webImpl struct {
	cfg           *config.Config
	table         *events.EventTable
	engine        *stats.Engine
	reconstructor *intervals.Reconstructor
	clock         intervals.Clock
	runId         string

	logger *zap.Logger
}

type WebParams struct {
	dig.In

	Cfg           *config.Config
	Table         *events.EventTable
	Engine        *stats.Engine
	Reconstructor *intervals.Reconstructor
	Clock         intervals.Clock
	RunId         string `name:"runId"`
	Logger        *zap.Logger
}

func NewWeb(p WebParams) Web {
	return &webImpl{
		cfg:           p.Cfg,
		table:         p.Table,
		engine:        p.Engine,
		reconstructor: p.Reconstructor,
		clock:         p.Clock,
		runId:         p.RunId,
		logger:        p.Logger.Named("web"),
	}
}

type SummaryResponse struct {
	RunId         string            `json:"runId"`
	Summary       stats.Summary     `json:"summary"`
	RunningJobs   int               `json:"runningJobs"`
	UnstartedJobs []string          `json:"unstartedJobs"`
	Issues        []intervals.Issue `json:"issues"`
}

type DurationsResponse struct {
	Values    []float64           `json:"values"`
	Stats     stats.DurationStats `json:"stats"`
	Histogram []render.Bin        `json:"histogram"`
}

func (wi *webImpl) Serve() error {
	wi.logger.Info("Starting web", zap.String("address", wi.cfg.Web.Address))
	s := http.Server{
		Addr:    wi.cfg.Web.Address,
		Handler: wi.Handler(),
	}
	return s.ListenAndServe()
}

// Handler builds the router. Every request recomputes its result from the loaded table, since running jobs end at the current time.
func (wi *webImpl) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(util.NewGinZapLogger(zapcore.InfoLevel, wi.logger))
	r.SetTrustedProxies(nil)

	g := r.Group("api/v1")
	g.GET("summary", func(c *gin.Context) {
		res := wi.reconstructor.Reconstruct(wi.table)
		c.JSON(200, SummaryResponse{
			RunId:         wi.runId,
			Summary:       wi.engine.Summarize(wi.table),
			RunningJobs:   countRunning(res.Intervals),
			UnstartedJobs: nonNil(res.Unstarted),
			Issues:        nonNil(res.Issues),
		})
	})
	g.GET("intervals", func(c *gin.Context) {
		res := wi.reconstructor.Reconstruct(wi.table)
		c.JSON(200, nonNil(res.Intervals))
	})
	addStatsEndpoints(g, wi)

	r.GET("/timeline.svg", func(c *gin.Context) {
		res := wi.reconstructor.Reconstruct(wi.table)
		var b bytes.Buffer
		err := render.RenderTimeline(&b, res.Intervals, render.TimelineOptions{Location: wi.engine.Location()})
		if err != nil {
			c.AbortWithError(500, fmt.Errorf("failed to render timeline: %w", err))
			return
		}
		c.Data(200, "image/svg+xml", b.Bytes())
	})
	r.GET("/dashboard.svg", func(c *gin.Context) {
		var b bytes.Buffer
		err := render.RenderDashboard(&b, render.NewDashboardData(wi.engine, wi.table))
		if err != nil {
			c.AbortWithError(500, fmt.Errorf("failed to render dashboard: %w", err))
			return
		}
		c.Data(200, "image/svg+xml", b.Bytes())
	})
	r.GET("/report.txt", func(c *gin.Context) {
		res := wi.reconstructor.Reconstruct(wi.table)
		var b bytes.Buffer
		err := render.WriteReport(&b, render.ReportData{
			Title:       wi.cfg.ReportTitle,
			RunID:       wi.runId,
			Summary:     wi.engine.Summarize(wi.table),
			RunningJobs: countRunning(res.Intervals),
			GeneratedAt: wi.clock.Now(),
			Location:    wi.engine.Location(),
		})
		if err != nil {
			c.AbortWithError(500, fmt.Errorf("failed to write report: %w", err))
			return
		}
		c.Data(200, "text/plain; charset=utf-8", b.Bytes())
	})
	return r
}

func countRunning(ivs []intervals.JobInterval) int {
	n := 0
	for _, iv := range ivs {
		if iv.IsRunning() {
			n++
		}
	}
	return n
}

// nonNil makes empty results serialize as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
