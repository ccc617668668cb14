package stats

import "strconv"

// Dimension is one count table of a snapshot keyed by strings
type Dimension struct {
	Name  string
	Table *Counter[string]
}

// IntKeys converts an int-keyed table, keeping first-seen order
func IntKeys(c *Counter[int]) *Counter[string] {
	out := NewCounter[string]()
	for _, p := range c.Items() {
		out.Add(strconv.Itoa(p.Key), p.Count)
	}
	return out
}

// FindDimension returns the table called name, or nil
func FindDimension(dims []Dimension, name string) *Counter[string] {
	for _, d := range dims {
		if d.Name == name {
			return d.Table
		}
	}
	return nil
}

// Dimensions lists the access tables. Weekly buckets use "week/country" keys.
func (s *AccessStats) Dimensions() []Dimension {
	weekly := NewCounter[string]()
	for _, week := range s.WeeklyStats.Weeks() {
		for _, p := range s.WeeklyStats.Week(week).Items() {
			weekly.Add(week+"/"+p.Key, p.Count)
		}
	}
	return []Dimension{
		{"country", s.RequestsByCountry},
		{"hour", IntKeys(s.RequestsByHour)},
		{"date", s.RequestsByDate},
		{"status", s.RequestsByStatus},
		{"method", s.RequestsByMethod},
		{"url", s.RequestsByURL},
		{"ip", s.RequestsByIP},
		{"weekly", weekly},
	}
}

// Dimensions lists the error tables
func (s *ErrorStats) Dimensions() []Dimension {
	return []Dimension{
		{"level", s.ErrorsByLevel},
		{"hour", IntKeys(s.ErrorsByHour)},
		{"date", s.ErrorsByDate},
		{"message", s.TopErrorMessages},
		{"pid", IntKeys(s.ErrorsByPID)},
		{"country", s.ErrorsByCountry},
		{"ip", s.ErrorsByIP},
		{"url", s.ErrorsByURL},
		{"method", s.ErrorsByMethod},
		{"error_type", s.ErrorsByErrorType},
	}
}

// Dimensions lists the successful-request tables
func (s *SuccessfulRequestStats) Dimensions() []Dimension {
	return []Dimension{
		{"country", s.ByCountry},
		{"date", s.ByDate},
		{"hour", IntKeys(s.ByHour)},
		{"method", s.ByMethod},
		{"url", s.ByURL},
	}
}
