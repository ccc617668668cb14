package stats

import (
	"encoding/json"
	"sort"
)

// Pair is one key of a count table with its count
type Pair[K comparable] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// Counter is a frequency table that remembers the order in which keys were
// first seen. The zero value is ready to use. Not safe for concurrent use.
type Counter[K comparable] struct {
	counts map[K]int
	order  []K
}

// NewCounter creates an empty counter
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Inc adds one to key
func (c *Counter[K]) Inc(key K) {
	c.Add(key, 1)
}

// Add adds n to key. Non-positive n is ignored so counts never decrease.
func (c *Counter[K]) Add(key K, n int) {
	if n <= 0 {
		return
	}
	if c.counts == nil {
		c.counts = make(map[K]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// Get returns the count for key, zero when absent
func (c *Counter[K]) Get(key K) int {
	return c.counts[key]
}

// Len returns the number of distinct keys
func (c *Counter[K]) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts
func (c *Counter[K]) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Keys returns the keys in first-seen order
func (c *Counter[K]) Keys() []K {
	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}

// Items returns every key with its count in first-seen order
func (c *Counter[K]) Items() []Pair[K] {
	items := make([]Pair[K], 0, len(c.order))
	for _, k := range c.order {
		items = append(items, Pair[K]{Key: k, Count: c.counts[k]})
	}
	return items
}

// Top returns at most n pairs sorted by count descending; ties keep
// first-seen order. n <= 0 yields nil.
func (c *Counter[K]) Top(n int) []Pair[K] {
	if n <= 0 {
		return nil
	}
	items := c.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// MostCommon returns every pair sorted by count descending
func (c *Counter[K]) MostCommon() []Pair[K] {
	return c.Top(c.Len())
}

// Merge adds every count of other into c. Keys new to c are appended in
// other's first-seen order.
func (c *Counter[K]) Merge(other *Counter[K]) {
	if other == nil {
		return
	}
	for _, k := range other.order {
		c.Add(k, other.counts[k])
	}
}

// Map returns a copy of the table as a plain map
func (c *Counter[K]) Map() map[K]int {
	m := make(map[K]int, len(c.counts))
	for k, n := range c.counts {
		m[k] = n
	}
	return m
}

// Clone returns an independent copy
func (c *Counter[K]) Clone() *Counter[K] {
	clone := NewCounter[K]()
	clone.Merge(c)
	return clone
}

// MarshalJSON encodes the table as a JSON object
func (c *Counter[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
