// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"geostats/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SystemHandler reports process and batch state
type SystemHandler struct {
	source    Source
	logger    *pterm.Logger
	startTime time.Time
	dbPath    string
}

// SystemStats describes the process and the latest finished batch
type SystemStats struct {
	// Process Info
	AppVersion    string  `json:"app_version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
	GoVersion     string  `json:"go_version"`
	NumCPU        int     `json:"num_cpu"`
	NumGoroutines int     `json:"num_goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemorySysMB   float64 `json:"memory_sys_mb"`
	GCPauseMs     float64 `json:"gc_pause_ms"`

	// Database Info
	DatabasePath   string  `json:"database_path,omitempty"`
	DatabaseSizeMB float64 `json:"database_size_mb"`

	// Latest batch
	LastRunAt       string `json:"last_run_at"`
	LastRunAge      string `json:"last_run_age"`
	LastRunDuration string `json:"last_run_duration"`
	AccessRequests  int    `json:"access_requests"`
	Errors          int    `json:"errors"`
	Successful      int    `json:"successful_requests"`
	LinesRead       int64  `json:"lines_read"`
	LinesUnparsed   int64  `json:"lines_unparsed"`
}

// NewSystemHandler creates a new system handler. dbPath may be empty.
func NewSystemHandler(source Source, logger *pterm.Logger, dbPath string) *SystemHandler {
	return &SystemHandler{
		source:    source,
		logger:    logger,
		startTime: time.Now(),
		dbPath:    dbPath,
	}
}

// GetHealth reports whether a batch has been served yet
func (h *SystemHandler) GetHealth(c *gin.Context) {
	status := "ok"
	if h.source.Latest() == nil {
		status = "pending"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"version": version.Version,
		"uptime":  formatDuration(time.Since(h.startTime)),
	})
}

// GetSystemStats returns process statistics and the counters of the latest batch
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.collectSystemStats())
}

func (h *SystemHandler) collectSystemStats() *SystemStats {
	stats := &SystemStats{
		AppVersion:    version.Version,
		StartTime:     h.startTime.Format(time.RFC3339),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		DatabasePath:  h.dbPath,
	}

	uptime := time.Since(h.startTime)
	stats.UptimeSeconds = int64(uptime.Seconds())
	stats.Uptime = formatDuration(uptime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryAllocMB = float64(m.Alloc) / 1024 / 1024
	stats.MemorySysMB = float64(m.Sys) / 1024 / 1024
	stats.GCPauseMs = float64(m.PauseNs[(m.NumGC+255)%256]) / 1000000

	if h.dbPath != "" {
		if fileInfo, err := os.Stat(h.dbPath); err == nil {
			stats.DatabaseSizeMB = float64(fileInfo.Size()) / 1024 / 1024
		} else {
			h.logger.Debug("Database file not readable", h.logger.Args("path", h.dbPath, "error", err))
		}
	}

	r := h.source.Latest()
	if r == nil {
		stats.LastRunAt = "Never"
		stats.LastRunAge = "N/A"
		stats.LastRunDuration = "N/A"
		return stats
	}

	stats.LastRunAt = r.CompletedAt.Format(time.DateTime)
	stats.LastRunAge = formatDuration(time.Since(r.CompletedAt))
	stats.LastRunDuration = r.Duration.Round(time.Millisecond).String()
	stats.AccessRequests = r.Access.TotalRequests
	stats.Errors = r.Errors.TotalErrors
	stats.Successful = r.Successful.TotalSuccessfulRequests
	stats.LinesRead = r.Access.Run.LinesRead + r.Errors.Run.LinesRead + r.Successful.Run.LinesRead
	stats.LinesUnparsed = r.Access.Run.Unparsed + r.Errors.Run.Unparsed + r.Successful.Run.Unparsed
	return stats
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return formatPlural(days, "day", hours, "hour")
	}
	if hours > 0 {
		return formatPlural(hours, "hour", minutes, "minute")
	}
	if minutes > 0 {
		return formatPlural(minutes, "minute", seconds, "second")
	}
	return formatPlural(seconds, "second", 0, "")
}

// formatPlural formats numbers with proper pluralization
func formatPlural(n1 int, unit1 string, n2 int, unit2 string) string {
	result := formatSingle(n1, unit1)
	if n2 > 0 && unit2 != "" {
		result += ", " + formatSingle(n2, unit2)
	}
	return result
}

// formatSingle formats a single value with pluralization
func formatSingle(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

