package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrSetCachesValue(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(ctx, "k", 0, fn)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got != "value" {
			t.Fatalf("got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestGetOrSetExpiry(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrSet(ctx, "k", 10*time.Millisecond, fn); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	got, err := c.GetOrSet(ctx, "k", 10*time.Millisecond, fn)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("expected recompute after expiry, got %v (calls=%d)", got, calls)
	}
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	calls := 0
	if _, err := c.GetOrSet(ctx, "k", 0, func(ctx context.Context) (any, error) {
		calls++
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := c.GetOrSet(ctx, "k", 0, func(ctx context.Context) (any, error) {
		calls++
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("got %v, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGetOrSetCollapsesConcurrentMisses(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	var computations int32
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&computations, 1)
		close(started)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 10)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrSet(ctx, "k", 0, fn)
	}()
	<-started

	for i := 1; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrSet(ctx, "k", 0, func(ctx context.Context) (any, error) {
				atomic.AddInt32(&computations, 1)
				return "duplicate", nil
			})
		}(i)
	}

	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&computations); n != 1 {
		t.Errorf("computations = %d, want 1", n)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("results[%d] = %v, want shared", i, r)
		}
	}
}

func TestGetOrSetWaiterHonorsContext(t *testing.T) {
	c := New(time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = c.GetOrSet(context.Background(), "k", 0, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetOrSet(ctx, "k", 0, func(ctx context.Context) (any, error) {
		return "unused", nil
	}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	set := func(key, val string) {
		_, _ = c.GetOrSet(ctx, key, 0, func(ctx context.Context) (any, error) { return val, nil })
	}
	set("workload_a", "1")
	set("workload_b", "2")
	set("holidays_all", "3")

	c.Invalidate("workload_")

	calls := 0
	fn := func(ctx context.Context) (any, error) {
		calls++
		return "new", nil
	}
	_, _ = c.GetOrSet(ctx, "workload_a", 0, fn)
	_, _ = c.GetOrSet(ctx, "workload_b", 0, fn)
	if calls != 2 {
		t.Errorf("workload keys not invalidated (calls=%d)", calls)
	}

	got, _ := c.GetOrSet(ctx, "holidays_all", 0, fn)
	if got != "3" {
		t.Errorf("unrelated key was invalidated: %v", got)
	}
}
