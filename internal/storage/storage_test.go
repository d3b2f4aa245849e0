package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/xelth-com/maintdesk/internal/config"
)

func TestFileSinkPutGet(t *testing.T) {
	ctx := context.Background()
	sink := NewFileSink(t.TempDir())

	name := ArchiveName(2024)
	if err := sink.Put(ctx, name, []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, err := sink.Get(ctx, name)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Got %q, want []", data)
	}
}

func TestFileSinkMissingAndInvalidNames(t *testing.T) {
	ctx := context.Background()
	sink := NewFileSink(t.TempDir())

	if _, err := sink.Get(ctx, "archives/jobs-1999.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := sink.Put(ctx, "../escape.json", []byte("{}")); err == nil {
		t.Error("Expected error for a name outside the sink directory")
	}
}

func TestObjectNames(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)
	if got := BackupName(at); got != "backups/2026/10/19/maintdesk-backup-20261019-140509.json" {
		t.Errorf("BackupName = %q", got)
	}
	if got := ArchiveName(2025); got != "archives/jobs-2025.json" {
		t.Errorf("ArchiveName = %q", got)
	}
}

func TestObjectWriter(t *testing.T) {
	ctx := context.Background()
	sink := NewFileSink(t.TempDir())

	w := NewObjectWriter(ctx, sink, "archives/jobs-2024.json")
	if _, err := w.Write([]byte(`[{"id":"j1"}]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rc, err := sink.Get(ctx, "archives/jobs-2024.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `[{"id":"j1"}]` {
		t.Errorf("Got %q", data)
	}

	bad := NewObjectWriter(ctx, sink, "../outside.json")
	if _, err := bad.Write([]byte("{}")); err == nil {
		t.Error("Write should report the failed upload")
	}
}

func TestNewFallsBackToFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(context.Background(), config.MinIOConfig{}, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := sink.(*FileSink); !ok {
		t.Fatalf("Expected *FileSink, got %T", sink)
	}
	if got := sink.Location("a/b.json"); got != filepath.Join(dir, "a", "b.json") {
		t.Errorf("Location = %q", got)
	}
}
