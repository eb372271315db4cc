package database

import (
	"context"
	"testing"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// testReport builds a small report for storage tests.
func testReport() *model.CrawlReport {
	r := model.NewCrawlReport("https://docs.example.com/")
	r.Seed = "https://docs.example.com/"
	r.SeedDomain = "example.com"
	r.Elapsed = 3 * time.Second
	r.InternalLinks = 4
	r.ExternalLinks = 1
	r.Pages = []*model.Page{
		{URL: "https://docs.example.com/", StatusCode: 200, Title: "Docs", Depth: 0, Size: 120, Hash: "abc"},
		{URL: "https://docs.example.com/api", StatusCode: 200, Title: "API", Depth: 1, Size: 80, Hash: "def"},
	}
	r.Rejected = []model.RejectedLink{
		{Raw: "javascript:alert(1)", SourceURL: "https://docs.example.com/", Reason: "blocked scheme"},
	}
	return r
}

// TestOpenCreatesDatabase tests database creation and option handling.
func TestOpenCreatesDatabase(t *testing.T) {
	t.Parallel()

	t.Run("creates database when allowed", func(t *testing.T) {
		t.Parallel()

		cdb, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("Open() = %v", err)
		}
		defer cdb.Close() //nolint:errcheck // Test cleanup

		if cdb.db == nil {
			t.Fatal("database handle is nil")
		}
	})

	t.Run("refuses to create when disallowed", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

// TestSaveAndLoadReport tests the session round trip.
func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer cdb.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	id, err := cdb.SaveReport(ctx, testReport())
	if err != nil {
		t.Fatalf("SaveReport() = %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero session ID")
	}

	got, err := cdb.GetReport(ctx, id)
	if err != nil {
		t.Fatalf("GetReport() = %v", err)
	}
	if got == nil {
		t.Fatal("stored report not found")
	}
	if got.Seed != "https://docs.example.com/" {
		t.Errorf("seed = %q", got.Seed)
	}
	if got.PagesCrawled() != 2 {
		t.Errorf("pages = %d, want 2", got.PagesCrawled())
	}
	if len(got.Rejected) != 1 || got.Rejected[0].Reason != "blocked scheme" {
		t.Errorf("rejected = %+v", got.Rejected)
	}

	t.Run("missing session returns nil", func(t *testing.T) {
		report, err := cdb.GetReport(ctx, 9999)
		if err != nil {
			t.Fatalf("GetReport() = %v", err)
		}
		if report != nil {
			t.Error("expected nil for missing session")
		}
	})
}

// TestListSessionsAndStoredURLs tests session listing and URL queries.
func TestListSessionsAndStoredURLs(t *testing.T) {
	t.Parallel()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer cdb.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if _, err := cdb.SaveReport(ctx, testReport()); err != nil {
		t.Fatalf("SaveReport() = %v", err)
	}
	if _, err := cdb.SaveReport(ctx, testReport()); err != nil {
		t.Fatalf("SaveReport() = %v", err)
	}

	sessions, err := cdb.ListSessions(ctx, "https://docs.example.com/")
	if err != nil {
		t.Fatalf("ListSessions() = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if sessions[0].PagesCrawled != 2 || sessions[0].SeedDomain != "example.com" {
		t.Errorf("metadata = %+v", sessions[0])
	}

	urls, err := cdb.StoredURLs(ctx, "https://docs.example.com/")
	if err != nil {
		t.Fatalf("StoredURLs() = %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("urls = %v, want 2 distinct", urls)
	}

	latest, err := cdb.GetLatestReport(ctx, "https://docs.example.com/")
	if err != nil {
		t.Fatalf("GetLatestReport() = %v", err)
	}
	if latest == nil || latest.PagesCrawled() != 2 {
		t.Errorf("latest = %+v", latest)
	}

	t.Run("unknown seed has no latest report", func(t *testing.T) {
		report, err := cdb.GetLatestReport(ctx, "https://unknown.example/")
		if err != nil {
			t.Fatalf("GetLatestReport() = %v", err)
		}
		if report != nil {
			t.Error("expected nil for unknown seed")
		}
	})
}
