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
	"github.com/gin-gonic/gin"
	"github.com/jackbister/jobsuck/internal/render"
	"github.com/jackbister/jobsuck/internal/stats"
)

const durationHistogramBins = 20

func addStatsEndpoints(g *gin.RouterGroup, wi *webImpl) {
	g = g.Group("stats")

	g.GET("status", func(ctx *gin.Context) {
		ctx.JSON(200, wi.engine.StatusDistribution(wi.table))
	})

	g.GET("submissions", func(ctx *gin.Context) {
		ctx.JSON(200, wi.engine.SubmissionTimeline(wi.table))
	})

	g.GET("durations", func(ctx *gin.Context) {
		values := wi.engine.DurationDistribution(wi.table)
		seconds := make([]float64, len(values))
		for i, v := range values {
			seconds[i] = v / 1000
		}
		ctx.JSON(200, DurationsResponse{
			Values:    nonNil(values),
			Stats:     stats.Describe(values),
			Histogram: nonNil(render.Histogram(seconds, durationHistogramBins)),
		})
	})

	g.GET("cores", func(ctx *gin.Context) {
		ctx.JSON(200, wi.engine.CoreUtilization(wi.table))
	})
}
