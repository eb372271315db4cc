package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// countingStep records how many times it ran across pipelines.
type countingStep struct {
	count *atomic.Int32
}

func (c *countingStep) Name() string { return "counting" }

func (c *countingStep) Do(_ context.Context, report *model.CrawlReport) error {
	c.count.Add(1)
	report.InternalLinks = 1
	return nil
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(2))
		if bp.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcessBatch tests concurrent batch crawling.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all seeds in input order", func(t *testing.T) {
		t.Parallel()

		var count atomic.Int32
		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&countingStep{count: &count})
			return p
		}, WithConcurrency(2))

		seeds := []string{
			"https://docs.a.example/",
			"https://docs.b.example/",
			"https://docs.c.example/",
		}
		reports, err := bp.ProcessBatch(context.Background(), seeds)
		if err != nil {
			t.Fatalf("ProcessBatch() = %v", err)
		}
		if len(reports) != len(seeds) {
			t.Fatalf("reports = %d, want %d", len(reports), len(seeds))
		}
		if count.Load() != int32(len(seeds)) {
			t.Errorf("step ran %d times, want %d", count.Load(), len(seeds))
		}
		for i, r := range reports {
			if r == nil {
				t.Fatalf("reports[%d] is nil", i)
			}
			if r.Seed != seeds[i] {
				t.Errorf("reports[%d].Seed = %q, want %q", i, r.Seed, seeds[i])
			}
		}
	})

	t.Run("failed crawls keep their report", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&fakeStep{name: "failing", err: context.DeadlineExceeded})
			return p
		})

		reports, err := bp.ProcessBatch(context.Background(), []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("ProcessBatch() = %v", err)
		}
		if len(reports) != 1 || reports[0] == nil {
			t.Fatalf("reports = %+v", reports)
		}
		if reports[0].Error == "" {
			t.Error("expected error recorded in report")
		}
	})

	t.Run("cancelled context stops the batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if _, err := bp.ProcessBatch(ctx, []string{"https://docs.example.com/"}); err == nil {
			t.Fatal("expected cancellation error")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests streaming results.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	bp := NewBatchProcessor(func() *Pipeline {
		p := New()
		p.AddStep(&countingStep{count: &count})
		return p
	}, WithConcurrency(2))

	seeds := []string{"https://docs.a.example/", "https://docs.b.example/"}

	var mu sync.Mutex
	got := make(map[int]string)
	err := bp.ProcessBatchWithCallback(context.Background(), seeds,
		func(report *model.CrawlReport, index int) {
			mu.Lock()
			defer mu.Unlock()
			got[index] = report.Seed
		})
	if err != nil {
		t.Fatalf("ProcessBatchWithCallback() = %v", err)
	}
	if len(got) != len(seeds) {
		t.Fatalf("callbacks = %d, want %d", len(got), len(seeds))
	}
	for i, seed := range seeds {
		if got[i] != seed {
			t.Errorf("callback[%d] = %q, want %q", i, got[i], seed)
		}
	}
}
