package stats

import (
	"errors"

	parsers "geostats/internal/parser"
)

// RunStats counts what happened to the input of one analysis run.
// Rejected lines are counted here and nowhere else.
type RunStats struct {
	FilesFound      int   `json:"files_found"`
	FilesProcessed  int   `json:"files_processed"`
	FilesFailed     int   `json:"files_failed"`
	LinesRead       int64 `json:"lines_read"`
	Accepted        int64 `json:"accepted"`
	Unparsed        int64 `json:"unparsed"`
	NotSuccessful   int64 `json:"not_successful"`
	FilteredSelfIP  int64 `json:"filtered_self_ip"`
	FilteredCountry int64 `json:"filtered_country"`
}

// Reject records a parse failure under the matching counter
func (r *RunStats) Reject(err error) {
	if errors.Is(err, parsers.ErrNotSuccessful) {
		r.NotSuccessful++
		return
	}
	r.Unparsed++
}

// Filtered returns the number of parsed lines dropped by filters
func (r RunStats) Filtered() int64 {
	return r.FilteredSelfIP + r.FilteredCountry
}

// Merge adds other into r
func (r *RunStats) Merge(other RunStats) {
	r.FilesFound += other.FilesFound
	r.FilesProcessed += other.FilesProcessed
	r.FilesFailed += other.FilesFailed
	r.LinesRead += other.LinesRead
	r.Accepted += other.Accepted
	r.Unparsed += other.Unparsed
	r.NotSuccessful += other.NotSuccessful
	r.FilteredSelfIP += other.FilteredSelfIP
	r.FilteredCountry += other.FilteredCountry
}
