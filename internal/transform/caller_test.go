package transform

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func newTestCaller() (*Caller, *[]time.Duration) {
	var slept []time.Duration
	c := NewCaller(0, nil)
	c.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestCallSucceedsFirstAttempt(t *testing.T) {
	c, slept := newTestCaller()

	calls := 0
	got, err := c.Call(context.Background(), "proofread", func(context.Context) (string, error) {
		calls++
		return "result", nil
	}, "original")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "result" || calls != 1 {
		t.Fatalf("got %q after %d calls, want %q after 1", got, calls, "result")
	}
	if len(*slept) != 0 {
		t.Fatalf("unexpected sleeps: %v", *slept)
	}
}

func TestCallRetriesThenSucceeds(t *testing.T) {
	c, slept := newTestCaller()

	calls := 0
	got, err := c.Call(context.Background(), "proofread", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "result", nil
	}, "original")

	if err != nil || got != "result" {
		t.Fatalf("got (%q, %v), want (%q, nil)", got, err, "result")
	}
	if calls != 3 {
		t.Fatalf("made %d calls, want 3", calls)
	}
	for i, d := range *slept {
		if d != 5*time.Second {
			t.Fatalf("sleep %d = %v, want 5s", i, d)
		}
	}
}

func TestCallExhaustionReturnsFallback(t *testing.T) {
	c, _ := newTestCaller()

	calls := 0
	got, err := c.Call(context.Background(), "translate", func(context.Context) (string, error) {
		calls++
		return "", errors.New("down")
	}, "original")

	if calls != 3 {
		t.Fatalf("made %d calls, want 3", calls)
	}
	if got != "original" {
		t.Fatalf("fallback = %q, want %q", got, "original")
	}
	if err == nil {
		t.Fatalf("expected terminal error alongside fallback")
	}
	if KindOf(err) != KindTransient {
		t.Fatalf("terminal kind = %s, want %s", KindOf(err), KindTransient)
	}
}

func TestCallTimeoutBackoffDoubles(t *testing.T) {
	c, slept := newTestCaller()

	_, err := c.Call(context.Background(), "proofread", func(context.Context) (string, error) {
		return "", context.DeadlineExceeded
	}, "original")

	if err == nil {
		t.Fatalf("expected error after exhaustion")
	}
	want := []time.Duration{10 * time.Second, 20 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Fatalf("sleep %d = %v, want %v", i, (*slept)[i], want[i])
		}
	}
	if KindOf(err) != KindTimeout {
		t.Fatalf("terminal kind = %s, want %s", KindOf(err), KindTimeout)
	}
}

func TestCallRateLimitKindSurvivesExhaustion(t *testing.T) {
	c, slept := newTestCaller()

	got, err := c.Call(context.Background(), "translate", func(context.Context) (string, error) {
		return "", &googleapi.Error{Code: 429}
	}, "original")

	if got != "original" {
		t.Fatalf("fallback = %q, want original", got)
	}
	if KindOf(err) != KindRateLimit {
		t.Fatalf("terminal kind = %s, want %s", KindOf(err), KindRateLimit)
	}
	// レート制限は固定5秒待ち（指数バックオフではない）。
	for i, d := range *slept {
		if d != 5*time.Second {
			t.Fatalf("sleep %d = %v, want 5s", i, d)
		}
	}
}

func TestCallFatalErrorStopsRetrying(t *testing.T) {
	c, slept := newTestCaller()

	calls := 0
	got, err := c.Call(context.Background(), "proofread", func(context.Context) (string, error) {
		calls++
		return "", &googleapi.Error{Code: 403}
	}, "original")

	if calls != 1 {
		t.Fatalf("made %d calls, want 1", calls)
	}
	if got != "original" || KindOf(err) != KindFatal {
		t.Fatalf("got (%q, kind %s), want (original, fatal)", got, KindOf(err))
	}
	if len(*slept) != 0 {
		t.Fatalf("fatal error should not sleep, slept %v", *slept)
	}
}

func TestCallEmptyResultRetries(t *testing.T) {
	c, _ := newTestCaller()

	calls := 0
	got, err := c.Call(context.Background(), "proofread", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", nil
		}
		return "filled", nil
	}, "original")

	if err != nil || got != "filled" {
		t.Fatalf("got (%q, %v), want (filled, nil)", got, err)
	}
	if calls != 2 {
		t.Fatalf("made %d calls, want 2", calls)
	}
}

func TestCallAllowEmptyAcceptsBlankResult(t *testing.T) {
	c, _ := newTestCaller()
	c.AllowEmpty = true

	calls := 0
	got, err := c.Call(context.Background(), "ocr", func(context.Context) (string, error) {
		calls++
		return "", nil
	}, "fallback")

	if err != nil || got != "" {
		t.Fatalf("got (%q, %v), want empty success", got, err)
	}
	if calls != 1 {
		t.Fatalf("made %d calls, want 1", calls)
	}
}

func TestCallCancelledContext(t *testing.T) {
	c, _ := newTestCaller()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.Call(ctx, "proofread", func(context.Context) (string, error) {
		t.Fatal("attempt should not run on cancelled context")
		return "", nil
	}, "original")

	if got != "original" || err == nil {
		t.Fatalf("got (%q, %v), want fallback with error", got, err)
	}
}

func TestCallAttemptTimeoutApplied(t *testing.T) {
	c := NewCaller(10*time.Millisecond, nil)
	c.Attempts = 1
	c.Sleep = func(time.Duration) {}

	got, err := c.Call(context.Background(), "proofread", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, "original")

	if got != "original" {
		t.Fatalf("fallback = %q, want original", got)
	}
	if KindOf(err) != KindTimeout {
		t.Fatalf("terminal kind = %s, want %s", KindOf(err), KindTimeout)
	}
}
