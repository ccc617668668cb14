package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"geostats/internal/parser/access"
	"geostats/internal/parser/errorlog"
	"geostats/internal/stats"

	"github.com/pterm/pterm"
)

const summaryTop = 10

// PrintAccessSummary renders the access snapshot as console tables
func PrintAccessSummary(w io.Writer, s *stats.AccessStats) error {
	p := &printer{w: w}
	p.section("Nginx Access Log Summary")
	p.table(pterm.TableData{
		{"Metric", "Value"},
		{"Total requests", number(s.TotalRequests)},
		{"Unique IPs", number(s.TotalUniqueIPs)},
		{"Lines read", strconv.FormatInt(s.Run.LinesRead, 10)},
		{"Unparsed lines", strconv.FormatInt(s.Run.Unparsed, 10)},
		{"Filtered lines", strconv.FormatInt(s.Run.Filtered(), 10)},
	})

	p.section("Top Countries")
	p.table(rankedTable("Country", s.TopCountries, s.TotalRequests))

	p.section("Requests by Status")
	p.table(shareTable("Status", s.RequestsByStatus.MostCommon(), s.TotalRequests))

	p.section("Requests by Method")
	p.table(shareTable("Method", s.RequestsByMethod.MostCommon(), s.TotalRequests))

	p.section("Top URLs")
	p.table(rankedTable("URL", truncatePairs(s.RequestsByURL.Top(summaryTop), 60), s.TotalRequests))

	if from, to, ok := dateRange(s.RequestsByDate.Keys(), access.DateLayout); ok {
		p.section("Date Range")
		p.table(pterm.TableData{
			{"From", "To", "Days"},
			{from, to, number(s.RequestsByDate.Len())},
		})
	}
	return p.err
}

// PrintErrorSummary renders the error snapshot as console tables
func PrintErrorSummary(w io.Writer, s *stats.ErrorStats) error {
	p := &printer{w: w}
	p.section("Nginx Error Log Summary")
	p.table(pterm.TableData{
		{"Metric", "Value"},
		{"Total errors", number(s.TotalErrors)},
		{"Lines read", strconv.FormatInt(s.Run.LinesRead, 10)},
		{"Unparsed lines", strconv.FormatInt(s.Run.Unparsed, 10)},
	})

	p.section("Errors by Level")
	p.table(shareTable("Level", s.ErrorsByLevel.MostCommon(), s.TotalErrors))

	p.section("Errors by Type")
	p.table(shareTable("Type", s.ErrorsByErrorType.MostCommon(), s.TotalErrors))

	p.section("Top 10 Countries by Error Count")
	p.table(shareTable("Country", s.ErrorsByCountry.Top(summaryTop), s.TotalErrors))

	p.section("Top 10 IP Addresses by Error Count")
	p.table(shareTable("IP", s.ErrorsByIP.Top(summaryTop), s.TotalErrors))

	p.section("Top 10 Error Messages")
	p.table(shareTable("Message", truncatePairs(s.TopErrorMessages.Top(summaryTop), 80), s.TotalErrors))

	p.section("Top 10 URLs with Errors")
	p.table(shareTable("URL", s.ErrorsByURL.Top(summaryTop), s.TotalErrors))

	p.section("HTTP Methods with Errors")
	p.table(shareTable("Method", s.ErrorsByMethod.MostCommon(), s.TotalErrors))

	pids := pterm.TableData{{"PID", "Errors"}}
	for _, pair := range s.ErrorsByPID.Top(5) {
		pids = append(pids, []string{strconv.Itoa(pair.Key), number(pair.Count)})
	}
	p.section("Errors by Process ID")
	p.table(pids)

	if from, to, ok := dateRange(s.ErrorsByDate.Keys(), errorlog.DateLayout); ok {
		p.section("Date Range")
		p.table(pterm.TableData{
			{"From", "To", "Days with errors"},
			{from, to, number(s.ErrorsByDate.Len())},
		})
	}
	return p.err
}

// PrintSuccessfulSummary renders the successful-request snapshot as console tables
func PrintSuccessfulSummary(w io.Writer, s *stats.SuccessfulRequestStats) error {
	p := &printer{w: w}
	p.section("Successful Request Summary")
	p.table(pterm.TableData{
		{"Metric", "Value"},
		{"Successful requests", number(s.TotalSuccessfulRequests)},
		{"Unique IPs", number(s.UniqueIPs)},
		{"Non-2xx lines", strconv.FormatInt(s.Run.NotSuccessful, 10)},
	})

	p.section("Successful Requests by Country")
	p.table(rankedTable("Country", s.ByCountry.Top(summaryTop), s.TotalSuccessfulRequests))

	p.section("Successful Requests by Method")
	p.table(shareTable("Method", s.ByMethod.MostCommon(), s.TotalSuccessfulRequests))

	p.section("Popular URLs")
	p.table(rankedTable("URL", truncatePairs(s.TopURLs, 60), s.TotalSuccessfulRequests))

	p.section("Busiest Days")
	p.table(rankedTable("Date", s.ByDate.Top(summaryTop), s.TotalSuccessfulRequests))
	return p.err
}

// printer keeps the first write error so the summaries read linearly
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) section(title string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprint(p.w, pterm.DefaultSection.Sprint(title))
}

func (p *printer) table(data pterm.TableData) {
	if p.err != nil {
		return
	}
	if len(data) < 2 {
		_, p.err = fmt.Fprintln(p.w, "  (none)")
		return
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		p.err = err
		return
	}
	_, p.err = fmt.Fprintln(p.w, out)
}

func shareTable(label string, pairs []stats.Pair[string], total int) pterm.TableData {
	data := pterm.TableData{{label, "Count", "Share"}}
	for _, pair := range pairs {
		data = append(data, []string{pair.Key, number(pair.Count), percent(pair.Count, total)})
	}
	return data
}

func rankedTable(label string, pairs []stats.Pair[string], total int) pterm.TableData {
	data := pterm.TableData{{"#", label, "Count", "Share"}}
	for i, pair := range pairs {
		data = append(data, []string{strconv.Itoa(i + 1), pair.Key, number(pair.Count), percent(pair.Count, total)})
	}
	return data
}

func truncatePairs(pairs []stats.Pair[string], maxLen int) []stats.Pair[string] {
	out := make([]stats.Pair[string], len(pairs))
	for i, pair := range pairs {
		if len(pair.Key) > maxLen {
			pair.Key = pair.Key[:maxLen-3] + "..."
		}
		out[i] = pair
	}
	return out
}

func percent(count, total int) string {
	return strconv.FormatFloat(share(count, total), 'f', 1, 64) + "%"
}

// number groups thousands with commas
func number(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// dateRange returns the earliest and latest of keys parsed with layout.
// Keys that do not parse are ignored.
func dateRange(keys []string, layout string) (from, to string, ok bool) {
	type dated struct {
		key string
		t   time.Time
	}
	var ds []dated
	for _, k := range keys {
		t, err := time.Parse(layout, k)
		if err != nil {
			continue
		}
		ds = append(ds, dated{k, t})
	}
	if len(ds) == 0 {
		return "", "", false
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].t.Before(ds[j].t) })
	return ds[0].key, ds[len(ds)-1].key, true
}
