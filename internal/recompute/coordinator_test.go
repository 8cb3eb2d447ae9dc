package recompute

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/store"
)

// fakeSource serves a fixed snapshot and counts how often it was read.
type fakeSource struct {
	mu    sync.Mutex
	snap  *store.Snapshot
	err   error
	reads int
}

func (f *fakeSource) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeSource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func testSnapshot() *store.Snapshot {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	return &store.Snapshot{
		Tasks: []models.Task{
			{ID: "1", Title: "inbox item", Status: models.TaskStatusInbox, Priority: models.PriorityMedium, CreatedAt: now},
			{ID: "2", Title: "flagged", Status: models.TaskStatusNextAction, Priority: models.PriorityHigh, Flagged: true, Context: "@home", CreatedAt: now},
		},
		Boards: []models.Board{
			{ID: "board-home", Name: "Home", Kind: models.BoardContext, Value: "@home"},
		},
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker

	if tr.Latest() != 0 {
		t.Errorf("Expected zero generation, got %d", tr.Latest())
	}
	first := tr.Next()
	second := tr.Next()
	if second <= first {
		t.Errorf("Generations must increase: %d then %d", first, second)
	}
	if tr.Current(first) {
		t.Error("Older generation must not be current")
	}
	if !tr.Current(second) {
		t.Error("Newest generation must be current")
	}
}

func TestCoordinatorComputesAfterRequest(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	c := New(src, &Config{Coalesce: 10 * time.Millisecond})
	c.Start()
	defer c.Stop()

	if _, ok := c.Latest(); ok {
		t.Fatal("Expected no result before any request")
	}

	gen := c.Request()
	result := waitForGeneration(t, c, gen)

	if result.Counts["builtin:inbox"] != 1 {
		t.Errorf("Expected inbox count 1, got %d", result.Counts["builtin:inbox"])
	}
	if result.Counts["builtin:flagged"] != 1 {
		t.Errorf("Expected flagged count 1, got %d", result.Counts["builtin:flagged"])
	}
	if result.Counts["board-home"] != 1 {
		t.Errorf("Expected board count 1, got %d", result.Counts["board-home"])
	}
}

func TestCoordinatorCoalescesBurst(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	c := New(src, &Config{Coalesce: 100 * time.Millisecond})
	c.Start()
	defer c.Stop()

	var last uint64
	for i := 0; i < 20; i++ {
		last = c.Request()
	}
	waitForGeneration(t, c, last)

	if reads := src.Reads(); reads > 2 {
		t.Errorf("Expected burst to coalesce into at most 2 computations, got %d", reads)
	}
	stats := c.Stats()
	if stats.Requested != last || stats.Applied != last {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestCoordinatorDiscardsStaleResult(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	c := New(src, nil)

	stale := c.Request()
	result, err := c.Compute(context.Background(), stale)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// A newer request lands while the first computation is in flight.
	fresh := c.Request()

	if c.apply(result) {
		t.Error("Stale result must not be applied")
	}
	if _, ok := c.Latest(); ok {
		t.Error("Stale result must not become visible")
	}
	if c.Stats().Discarded != 1 {
		t.Errorf("Expected 1 discarded result, got %d", c.Stats().Discarded)
	}

	result, _ = c.Compute(context.Background(), fresh)
	if !c.apply(result) {
		t.Error("Current result must be applied")
	}
	latest, ok := c.Latest()
	if !ok || latest.Generation != fresh {
		t.Errorf("Expected generation %d to be latest, got %+v", fresh, latest)
	}
}

func TestCoordinatorUsesClock(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	c := New(src, nil)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return fixed }

	result, err := c.Compute(context.Background(), c.Request())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !result.ComputedAt.Equal(fixed) {
		t.Errorf("Expected ComputedAt %v, got %v", fixed, result.ComputedAt)
	}
}

func TestCoordinatorSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	c := New(src, &Config{})
	c.Start()

	c.Request()
	deadline := time.Now().Add(2 * time.Second)
	for src.Reads() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if src.Reads() == 0 {
		t.Fatal("Expected the coordinator to read the source")
	}
	if _, ok := c.Latest(); ok {
		t.Error("Failed computation must not produce a result")
	}
}

func TestCoordinatorStopIdle(t *testing.T) {
	c := New(&fakeSource{snap: testSnapshot()}, nil)
	c.Start()

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if err := (&Config{Coalesce: -time.Second}).Validate(); err == nil {
		t.Error("Negative coalesce should be rejected")
	}
}

func waitForGeneration(t *testing.T, c *Coordinator, gen uint64) *Result {
	t.Helper()
	timeout := time.After(5 * time.Second)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Timeout waiting for generation %d", gen)
		case <-ticker.C:
			if r, ok := c.Latest(); ok && r.Generation >= gen {
				return r
			}
		}
	}
}
