package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewGinZapLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(NewGinZapLogger(zapcore.InfoLevel, zap.New(core)))
	r.GET("/things/:id", func(c *gin.Context) {
		c.String(http.StatusTeapot, "hello")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/things/1", nil))

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry but got %v", logs.Len())
	}
	ctx := logs.All()[0].ContextMap()
	if ctx["status"] != int64(http.StatusTeapot) {
		t.Fatalf("got unexpected status field: %v", ctx["status"])
	}
	if ctx["route"] != "/things/:id" || ctx["path"] != "/things/1" {
		t.Fatalf("got unexpected route or path: %v, %v", ctx["route"], ctx["path"])
	}
}

func TestNewGinZapLogger_BelowLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.WarnLevel)
	r := gin.New()
	r.Use(NewGinZapLogger(zapcore.DebugLevel, zap.New(core)))
	r.GET("/", func(c *gin.Context) {
		c.Status(200)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if logs.Len() != 0 {
		t.Fatalf("expected no log entries but got %v", logs.Len())
	}
}
