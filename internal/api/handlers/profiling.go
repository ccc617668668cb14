package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Profiles that can be downloaded by name
var downloadableProfiles = map[string]bool{
	"heap":         true,
	"allocs":       true,
	"goroutine":    true,
	"threadcreate": true,
	"block":        true,
	"mutex":        true,
}

// ProfilingHandler exposes runtime profiles of a long-running serve process
type ProfilingHandler struct {
	logger *pterm.Logger
}

// NewProfilingHandler creates a new profiling handler
func NewProfilingHandler(logger *pterm.Logger) *ProfilingHandler {
	return &ProfilingHandler{logger: logger}
}

// Profile captures the profile named by the :name parameter
func (h *ProfilingHandler) Profile(c *gin.Context) {
	name := c.Param("name")
	if !downloadableProfiles[name] {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown profile: " + name})
		return
	}

	profile := pprof.Lookup(name)
	if profile == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile not available: " + name})
		return
	}

	var buf bytes.Buffer
	if err := profile.WriteTo(&buf, 0); err != nil {
		h.logger.WithCaller().Error("Failed to write profile", h.logger.Args("profile", name, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to write %s profile: %v", name, err),
		})
		return
	}

	filename := fmt.Sprintf("%s_%s.pprof", name, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/octet-stream", buf.Bytes())
}

// MemoryStats returns current memory statistics
func (h *ProfilingHandler) MemoryStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alloc":          m.Alloc,
		"total_alloc":    m.TotalAlloc,
		"sys":            m.Sys,
		"heap_alloc":     m.HeapAlloc,
		"heap_in_use":    m.HeapInuse,
		"heap_objects":   m.HeapObjects,
		"next_gc":        m.NextGC,
		"num_gc":         m.NumGC,
		"pause_total_ns": m.PauseTotalNs,
		"num_goroutines": runtime.NumGoroutine(),
	})
}
