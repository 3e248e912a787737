package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthAPI serves liveness and readiness checks.
type HealthAPI struct {
	database    Pinger
	name        string
	version     string
	environment string
	startedAt   time.Time
	now         func() time.Time
}

// HealthOption customises the application section of /health/detailed.
type HealthOption func(*HealthAPI)

// WithApplication names the running application.
func WithApplication(name, version, environment string) HealthOption {
	return func(api *HealthAPI) {
		api.name, api.version, api.environment = name, version, environment
	}
}

// WithStartTime sets the instant uptime is measured from.
func WithStartTime(startedAt time.Time) HealthOption {
	return func(api *HealthAPI) { api.startedAt = startedAt }
}

// WithHealthClock overrides the time source.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(api *HealthAPI) {
		if now != nil {
			api.now = now
		}
	}
}

// NewHealthAPI wires the database check. A nil pinger means the process runs on in-memory stores.
func NewHealthAPI(database Pinger, opts ...HealthOption) HealthAPI {
	api := HealthAPI{database: database, name: "shop-api", version: "dev", now: time.Now}
	for _, opt := range opts {
		opt(&api)
	}
	if api.startedAt.IsZero() {
		api.startedAt = api.now()
	}
	return api
}

// DatabaseStatus is the body of /health/database and the database section of /health.
type DatabaseStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Get /health
// Overall status; DOWN when the database check fails
func (api *HealthAPI) Health(c *gin.Context) {
	database := api.checkDatabase(c.Request.Context())
	status := statusUp
	code := http.StatusOK
	if database.Status != statusUp {
		status = statusDown
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"details": gin.H{
			"application": statusUp,
			"timestamp":   time.Now().UTC(),
			"database":    database,
		},
	})
}

// ApplicationStatus identifies the running build.
type ApplicationStatus struct {
	Status      string `json:"status"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// MemoryStatus reports Go runtime memory figures in whole megabytes.
type MemoryStatus struct {
	Status     string `json:"status"`
	Sys        string `json:"sys"`
	HeapAlloc  string `json:"heapAlloc"`
	HeapInuse  string `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

// UptimeStatus reports how long the process has been serving.
type UptimeStatus struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthComponents is the per-component breakdown of /health/detailed.
type HealthComponents struct {
	Application ApplicationStatus `json:"application"`
	Database    DatabaseStatus    `json:"database"`
	Memory      MemoryStatus      `json:"memory"`
	Uptime      UptimeStatus      `json:"uptime"`
}

// DetailedHealth is the body of /health/detailed.
type DetailedHealth struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Components HealthComponents `json:"components"`
}

// Get /health/detailed
// Every component with its own status; 503 when any of them is DOWN
func (api *HealthAPI) Detailed(c *gin.Context) {
	now := api.now()
	body := DetailedHealth{
		Status:    statusUp,
		Timestamp: now.UTC(),
		Components: HealthComponents{
			Application: ApplicationStatus{Status: statusUp, Name: api.name, Version: api.version, Environment: api.environment},
			Database:    api.checkDatabase(c.Request.Context()),
			Memory:      memoryStatus(),
			Uptime:      uptimeStatus(now.Sub(api.startedAt)),
		},
	}
	components := []string{
		body.Components.Application.Status,
		body.Components.Database.Status,
		body.Components.Memory.Status,
		body.Components.Uptime.Status,
	}
	code := http.StatusOK
	for _, status := range components {
		if status != statusUp {
			body.Status = statusDown
			code = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, body)
}

func memoryStatus() MemoryStatus {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return MemoryStatus{
		Status:     statusUp,
		Sys:        megabytes(stats.Sys),
		HeapAlloc:  megabytes(stats.HeapAlloc),
		HeapInuse:  megabytes(stats.HeapInuse),
		NumGC:      stats.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

func megabytes(n uint64) string {
	return fmt.Sprintf("%d MB", (n+512*1024)/(1024*1024))
}

func uptimeStatus(elapsed time.Duration) UptimeStatus {
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := int64(elapsed / time.Second)
	return UptimeStatus{
		Status:        statusUp,
		Uptime:        fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60),
		UptimeSeconds: seconds,
	}
}

// Get /health/ping
func (api *HealthAPI) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "pong", "timestamp": time.Now().UTC()})
}

// Get /health/database
func (api *HealthAPI) Database(c *gin.Context) {
	database := api.checkDatabase(c.Request.Context())
	code := http.StatusOK
	if database.Status != statusUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, database)
}

func (api *HealthAPI) checkDatabase(ctx context.Context) DatabaseStatus {
	if api.database == nil {
		return DatabaseStatus{Status: statusUp, Database: "memory"}
	}
	if err := api.database.Ping(ctx); err != nil {
		return DatabaseStatus{Status: statusDown, Database: "postgres", Error: "database unreachable"}
	}
	return DatabaseStatus{Status: statusUp, Database: "postgres"}
}
