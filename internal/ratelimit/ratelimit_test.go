package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAcquireFirstCallDoesNotWait(t *testing.T) {
	l := New(50 * time.Millisecond)
	var slept []time.Duration
	l.sleep = func(d time.Duration) { slept = append(slept, d) }

	l.Acquire()
	if len(slept) != 0 {
		t.Fatalf("first acquire should not sleep, slept %v", slept)
	}
}

func TestAcquireWaitsForInterval(t *testing.T) {
	l := New(50 * time.Millisecond)

	clock := time.Unix(0, 0)
	l.now = func() time.Time { return clock }
	var slept []time.Duration
	l.sleep = func(d time.Duration) {
		slept = append(slept, d)
		clock = clock.Add(d)
	}

	l.Acquire()
	clock = clock.Add(20 * time.Millisecond)
	l.Acquire()

	if len(slept) != 1 {
		t.Fatalf("expected exactly one sleep, got %v", slept)
	}
	if slept[0] != 30*time.Millisecond {
		t.Fatalf("slept %v, want 30ms", slept[0])
	}
}

func TestAcquireSkipsWaitAfterInterval(t *testing.T) {
	l := New(50 * time.Millisecond)

	clock := time.Unix(0, 0)
	l.now = func() time.Time { return clock }
	l.sleep = func(d time.Duration) { t.Fatalf("unexpected sleep of %v", d) }

	l.Acquire()
	clock = clock.Add(60 * time.Millisecond)
	l.Acquire()
}

func TestAcquireSerializesConcurrentCallers(t *testing.T) {
	l := New(10 * time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Acquire()
		}()
	}
	wg.Wait()

	// 5回の許可には最低でも 4×interval の経過が必要。
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("5 acquires finished in %v, want >= 40ms", elapsed)
	}
}
