package handlers

import (
	"net/http"
	"strconv"

	"geostats/internal/ingestion"
	"geostats/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	defaultTopN     = 10
	maxTopN         = 1000
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Source provides the most recent finished batch, nil before the first one
type Source interface {
	Latest() *ingestion.Results
}

// StatsHandler serves the aggregated snapshots
type StatsHandler struct {
	source Source
	logger *pterm.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(source Source, logger *pterm.Logger) *StatsHandler {
	return &StatsHandler{
		source: source,
		logger: logger,
	}
}

// latest writes 503 and returns nil while no batch has finished
func (h *StatsHandler) latest(c *gin.Context) *ingestion.Results {
	results := h.source.Latest()
	if results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis has not finished yet"})
		return nil
	}
	return results
}

// GetAccess returns the access log snapshot
func (h *StatsHandler) GetAccess(c *gin.Context) {
	if r := h.latest(c); r != nil {
		c.JSON(http.StatusOK, r.Access)
	}
}

// GetErrors returns the error log snapshot
func (h *StatsHandler) GetErrors(c *gin.Context) {
	if r := h.latest(c); r != nil {
		c.JSON(http.StatusOK, r.Errors)
	}
}

// GetSuccessful returns the successful-request snapshot without detail records
func (h *StatsHandler) GetSuccessful(c *gin.Context) {
	if r := h.latest(c); r != nil {
		c.JSON(http.StatusOK, r.Successful)
	}
}

// GetSuccessfulRecords pages through the flattened successful requests
func (h *StatsHandler) GetSuccessfulRecords(c *gin.Context) {
	r := h.latest(c)
	if r == nil {
		return
	}

	limit := defaultPageSize
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageSize)
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	details := r.Successful.Details
	start := min(offset, len(details))
	end := min(start+limit, len(details))

	records := make([]stats.DetailRecord, 0, end-start)
	for _, e := range details[start:end] {
		records = append(records, stats.Flatten(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(details),
		"limit":   limit,
		"offset":  offset,
		"records": records,
	})
}

// GetTop returns the n largest keys of one dimension of a snapshot
func (h *StatsHandler) GetTop(c *gin.Context) {
	r := h.latest(c)
	if r == nil {
		return
	}

	kind := c.Param("kind")
	var dims []stats.Dimension
	switch kind {
	case "access":
		dims = r.Access.Dimensions()
	case "errors":
		dims = r.Errors.Dimensions()
	case "successful":
		dims = r.Successful.Dimensions()
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown kind: " + kind})
		return
	}

	dimension := c.Param("dimension")
	table := stats.FindDimension(dims, dimension)
	if table == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown dimension: " + dimension})
		return
	}

	n := defaultTopN
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = min(parsed, maxTopN)
	}

	h.logger.Trace("Top query", h.logger.Args("kind", kind, "dimension", dimension, "n", n))

	c.JSON(http.StatusOK, gin.H{
		"kind":      kind,
		"dimension": dimension,
		"total":     table.Total(),
		"items":     table.Top(n),
	})
}
