package cache

import "testing"

func TestGetOrComputeCachesValue(t *testing.T) {
	c := NewMemory()

	calls := 0
	compute := func() string {
		calls++
		return "first"
	}

	if got := c.GetOrCompute("k", compute); got != "first" {
		t.Fatalf("got %q, want %q", got, "first")
	}
	if got := c.GetOrCompute("k", func() string { return "second" }); got != "first" {
		t.Errorf("cached read returned %q, want %q", got, "first")
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	c := NewMemory()

	c.GetOrCompute("k", func() string { return "stale" })
	c.Invalidate("k")

	if got := c.GetOrCompute("k", func() string { return "fresh" }); got != "fresh" {
		t.Errorf("got %q after invalidate, want %q", got, "fresh")
	}
}

func TestInvalidateMissingKey(t *testing.T) {
	c := NewMemory()
	c.Invalidate("never-set") // must not panic
}
