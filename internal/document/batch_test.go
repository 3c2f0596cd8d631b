package document

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Aman-2203/ShabdSetu/internal/dispatch"
	"github.com/Aman-2203/ShabdSetu/internal/pool"
	"github.com/Aman-2203/ShabdSetu/internal/ratelimit"
	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

// fakeSource は生成済みバイト列をページとして返すPageSourceです。
type fakeSource struct {
	pages  [][]byte
	failOn map[int]bool
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) PageImage(page int) ([]byte, error) {
	if s.failOn[page] {
		return nil, fmt.Errorf("no image on page %d", page)
	}
	return s.pages[page-1], nil
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{failOn: map[int]bool{}}
	for i := 1; i <= n; i++ {
		s.pages = append(s.pages, []byte(fmt.Sprintf("img-%d", i)))
	}
	return s
}

func newTestRenderer(t *testing.T) *BatchRenderer {
	t.Helper()
	p := pool.New(8)
	t.Cleanup(p.Shutdown)

	caller := transform.NewCaller(0, nil)
	caller.Sleep = func(time.Duration) {}
	d := dispatch.New(p, ratelimit.New(0), caller, nil)
	return NewBatchRenderer(d, nil)
}

func TestExtractTextJoinsPagesInOrder(t *testing.T) {
	r := newTestRenderer(t)
	src := newFakeSource(12)

	got, err := r.ExtractText(context.Background(), src,
		func(_ context.Context, image []byte) (string, error) {
			return "text-for-" + string(image), nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ""
	for i := 1; i <= 12; i++ {
		if i > 1 {
			want += "\n\n"
		}
		want += fmt.Sprintf("text-for-img-%d", i)
	}
	if got != want {
		t.Fatalf("pages out of order:\ngot  %q\nwant %q", got, want)
	}
}

func TestExtractTextBatchesPages(t *testing.T) {
	r := newTestRenderer(t)
	src := newFakeSource(12)

	var mu sync.Mutex
	var inFlight, peak int
	_, err := r.ExtractText(context.Background(), src,
		func(_ context.Context, _ []byte) (string, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			return "x", nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > DefaultBatchSize {
		t.Fatalf("observed %d concurrent OCR calls, want <= %d", peak, DefaultBatchSize)
	}
}

func TestExtractTextReportsTwoUnitsPerPage(t *testing.T) {
	r := newTestRenderer(t)
	src := newFakeSource(7)

	var reports []int
	lastTotal := 0
	_, err := r.ExtractText(context.Background(), src,
		func(_ context.Context, _ []byte) (string, error) { return "x", nil },
		func(done, total int, _ string) {
			reports = append(reports, done)
			lastTotal = total
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lastTotal != 14 {
		t.Fatalf("total = %d, want 14 (2 units per page)", lastTotal)
	}
	if len(reports) != 14 {
		t.Fatalf("got %d progress reports, want 14", len(reports))
	}
	for i, done := range reports {
		if done != i+1 {
			t.Fatalf("report %d = %d, want %d", i, done, i+1)
		}
	}
}

func TestExtractTextSkipsFailedPages(t *testing.T) {
	r := newTestRenderer(t)
	src := newFakeSource(3)
	src.failOn[2] = true

	got, err := r.ExtractText(context.Background(), src,
		func(_ context.Context, image []byte) (string, error) {
			return string(image), nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "img-1\n\nimg-3" {
		t.Fatalf("got %q, want failed page dropped", got)
	}
}

func TestExtractTextEmptyPagesOmitted(t *testing.T) {
	r := newTestRenderer(t)
	src := newFakeSource(3)

	got, err := r.ExtractText(context.Background(), src,
		func(_ context.Context, image []byte) (string, error) {
			if string(image) == "img-2" {
				return "", fmt.Errorf("blank page")
			}
			return string(image), nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "img-1\n\nimg-3" {
		t.Fatalf("got %q, want blank page dropped", got)
	}
}
