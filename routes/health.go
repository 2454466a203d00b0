package routes

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "ChurrasApp API"
	serviceVersion = "1.0.0"
)

// GET /health — liveness plus database readiness. 503 when degraded.
func (d *deps) health(c *gin.Context) {
	status := "OK"
	code := http.StatusOK
	if d.dbm == nil || !d.dbm.IsReady() {
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}

	respondOK(c, code, gin.H{
		"status":  status,
		"service": serviceName,
		"version": serviceVersion,
		"uptime":  time.Since(d.start).Seconds(),
	}, nil)
}

// GET /health/detailed — adds connection and runtime detail.
func (d *deps) healthDetailed(c *gin.Context) {
	status := "OK"
	code := http.StatusOK
	if d.dbm == nil || !d.dbm.IsReady() {
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	data := gin.H{
		"status":      status,
		"service":     serviceName,
		"version":     serviceVersion,
		"uptime":      time.Since(d.start).Seconds(),
		"environment": envOrDefault("APP_ENV", "development"),
		"goVersion":   runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": gin.H{
			"usedMB":  mem.HeapAlloc / 1024 / 1024,
			"totalMB": mem.HeapSys / 1024 / 1024,
		},
	}
	if d.dbm != nil {
		data["database"] = d.dbm.ConnectionInfo()
	}

	respondOK(c, code, data, nil)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
