package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// fakeStep is a configurable Step for pipeline tests.
type fakeStep struct {
	name   string
	err    error
	called *bool
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Do(_ context.Context, report *model.CrawlReport) error {
	if f.called != nil {
		*f.called = true
	}
	if f.err != nil {
		return f.err
	}
	report.InternalLinks++
	return nil
}

// TestPipelineNew tests the Pipeline constructor and options.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with defaults", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.logger == nil {
			t.Error("expected non-nil logger")
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithLogger option", func(t *testing.T) {
		t.Parallel()

		logger := slog.Default()
		p := New(WithLogger(logger))
		if p.logger != logger {
			t.Error("expected custom logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError true")
		}
	})
}

// TestPipelineExecute tests step sequencing and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&fakeStep{name: "first"},
			&fakeStep{name: "second"},
		)

		report := model.NewCrawlReport("https://docs.example.com/")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() = %v", err)
		}
		if report.InternalLinks != 2 {
			t.Errorf("expected both steps to run, got %d", report.InternalLinks)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		var secondRan bool

		p := New()
		p.AddStep(&fakeStep{name: "failing", err: stepErr})
		p.AddStep(&fakeStep{name: "after", called: &secondRan})

		report := model.NewCrawlReport("https://docs.example.com/")
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, stepErr) {
			t.Fatalf("Execute() = %v, want wrapped %v", err, stepErr)
		}
		if secondRan {
			t.Error("expected second step to be skipped")
		}
		if report.Error == "" {
			t.Error("expected error recorded in report")
		}
	})

	t.Run("continues past errors when configured", func(t *testing.T) {
		t.Parallel()

		var secondRan bool

		p := New(WithContinueOnError(true))
		p.AddStep(&fakeStep{name: "failing", err: errors.New("boom")})
		p.AddStep(&fakeStep{name: "after", called: &secondRan})

		report := model.NewCrawlReport("https://docs.example.com/")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() = %v", err)
		}
		if !secondRan {
			t.Error("expected second step to run")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran bool
		p := New()
		p.AddStep(&fakeStep{name: "never", called: &ran})

		report := model.NewCrawlReport("https://docs.example.com/")
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() = %v, want context.Canceled", err)
		}
		if ran {
			t.Error("expected step to be skipped after cancellation")
		}
		if !report.TimedOut {
			t.Error("expected TimedOut flag")
		}
	})
}
