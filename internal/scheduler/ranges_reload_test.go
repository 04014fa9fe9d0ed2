package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/index"
	"github.com/MrSnakeDoc/timejump/internal/logger"
	"github.com/MrSnakeDoc/timejump/internal/sources/ranges"
)

func writeRanges(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write ranges file: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRangesReloader_Defaults(t *testing.T) {
	idx := index.NewRangeIndex()
	rr := NewRangesReloader("", idx, logger.Nop(), 0, nil)

	if err := rr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if idx.Count() != len(ranges.Defaults) {
		t.Errorf("Count() = %v, want %v", idx.Count(), len(ranges.Defaults))
	}
	if idx.Source() != "defaults" {
		t.Errorf("Source() = %v, want defaults", idx.Source())
	}
}

func TestRangesReloader_KeepsPreviousListOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.yaml")
	writeRanges(t, path, "ranges:\n  - tap!A:G\n")

	idx := index.NewRangeIndex()
	rr := NewRangesReloader(path, idx, logger.Nop(), 0, nil)
	if err := rr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	writeRanges(t, path, "ranges: []\n")
	if err := rr.Reload(); err == nil {
		t.Fatal("Reload should fail on an empty list")
	}

	got := idx.Ranges()
	if len(got) != 1 || got[0] != "tap!A:G" {
		t.Errorf("Ranges() = %v, want previous list [tap!A:G]", got)
	}
}

func TestRangesReloader_StartFailsWithoutFile(t *testing.T) {
	rr := NewRangesReloader(filepath.Join(t.TempDir(), "missing.yaml"), index.NewRangeIndex(), logger.Nop(), 0, nil)
	if err := rr.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when the ranges file is missing")
	}
}

func TestRangesReloader_ManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.yaml")
	writeRanges(t, path, "ranges:\n  - A:G\n")

	idx := index.NewRangeIndex()
	trigger := make(chan struct{}, 1)
	rr := NewRangesReloader(path, idx, logger.Nop(), 0, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rr.Stop()

	writeRanges(t, path, "ranges:\n  - Sheet1!A:G\n  - A:G\n")
	trigger <- struct{}{}

	waitFor(t, func() bool { return idx.Count() == 2 })
	if got := idx.Ranges(); got[0] != "Sheet1!A:G" {
		t.Errorf("Ranges()[0] = %v, want Sheet1!A:G", got[0])
	}
}

func TestRangesReloader_Periodic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.yaml")
	writeRanges(t, path, "ranges:\n  - A:G\n")

	idx := index.NewRangeIndex()
	rr := NewRangesReloader(path, idx, logger.Nop(), 20*time.Millisecond, nil)
	if err := rr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rr.Stop()

	writeRanges(t, path, "ranges:\n  - tap!A:G\n  - A:G\n  - Hoja1!A:G\n")
	waitFor(t, func() bool { return idx.Count() == 3 })

	rr.Stop()
	rr.Stop()
}
