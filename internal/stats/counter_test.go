package stats

import (
	"encoding/json"
	"testing"
)

func TestCounter_TopTiesKeepFirstSeenOrder(t *testing.T) {
	c := NewCounter[string]()
	for _, k := range []string{"b", "a", "c", "a", "b", "d"} {
		c.Inc(k)
	}

	top := c.Top(3)
	if len(top) != 3 {
		t.Fatalf("Expected 3 pairs, got %d", len(top))
	}

	expected := []Pair[string]{{"b", 2}, {"a", 2}, {"c", 1}}
	for i, p := range expected {
		if top[i] != p {
			t.Errorf("Top[%d]: expected %+v, got %+v", i, p, top[i])
		}
	}
}

func TestCounter_TopBounds(t *testing.T) {
	c := NewCounter[int]()
	c.Inc(1)
	c.Inc(2)

	if got := c.Top(0); got != nil {
		t.Errorf("Expected nil for n=0, got %v", got)
	}
	if got := c.Top(-1); got != nil {
		t.Errorf("Expected nil for n<0, got %v", got)
	}
	if got := c.Top(10); len(got) != 2 {
		t.Errorf("Expected 2 pairs when n exceeds keys, got %d", len(got))
	}
}

func TestCounter_TopSortedDescending(t *testing.T) {
	c := NewCounter[string]()
	c.Add("x", 1)
	c.Add("y", 5)
	c.Add("z", 3)

	top := c.MostCommon()
	for i := 1; i < len(top); i++ {
		if top[i-1].Count < top[i].Count {
			t.Errorf("Expected descending counts, got %v", top)
		}
	}
	if top[0].Key != "y" {
		t.Errorf("Expected 'y' first, got '%s'", top[0].Key)
	}
}

func TestCounter_AddIgnoresNonPositive(t *testing.T) {
	var c Counter[string]
	c.Add("a", 0)
	c.Add("a", -3)

	if c.Len() != 0 {
		t.Errorf("Expected no keys, got %d", c.Len())
	}
	c.Inc("a")
	if c.Get("a") != 1 || c.Total() != 1 {
		t.Errorf("Expected count 1, got %d (total %d)", c.Get("a"), c.Total())
	}
}

func TestCounter_MergeAndClone(t *testing.T) {
	a := NewCounter[string]()
	a.Add("US", 2)
	b := NewCounter[string]()
	b.Add("DE", 1)
	b.Add("US", 3)

	clone := a.Clone()
	a.Merge(b)

	if a.Get("US") != 5 || a.Get("DE") != 1 {
		t.Errorf("Unexpected merge result %v", a.Map())
	}
	if keys := a.Keys(); len(keys) != 2 || keys[0] != "US" || keys[1] != "DE" {
		t.Errorf("Expected keys [US DE], got %v", keys)
	}
	if clone.Get("US") != 2 || clone.Len() != 1 {
		t.Errorf("Clone changed after merge: %v", clone.Map())
	}

	a.Merge(nil)
	if a.Total() != 6 {
		t.Errorf("Expected total 6, got %d", a.Total())
	}
}

func TestCounter_MarshalJSON(t *testing.T) {
	c := NewCounter[int]()
	c.Inc(13)
	c.Inc(13)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"13":2}` {
		t.Errorf("Expected {\"13\":2}, got %s", data)
	}
}
