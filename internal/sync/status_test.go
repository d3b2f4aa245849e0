package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRemoteStatusTransitions(t *testing.T) {
	rs := NewRemoteStatus(newFakeRemote(), 0, zap.NewNop())

	rs.Record(errors.New("dial tcp: refused"), 0)
	rs.Record(errors.New("dial tcp: refused"), 0)
	h := rs.Snapshot()
	if h.Available || h.FailureCount != 2 {
		t.Errorf("Expected 2 consecutive failures, got %+v", h)
	}
	if len(h.Transitions) != 1 {
		t.Errorf("Repeated failures should log one transition, got %d", len(h.Transitions))
	}

	rs.Record(nil, 10*time.Millisecond)
	rs.Record(nil, 30*time.Millisecond)
	h = rs.Snapshot()
	if !rs.IsOnline() || h.FailureCount != 0 || h.SuccessCount != 2 {
		t.Errorf("Unexpected health after recovery: %+v", h)
	}
	if h.AvgLatency != 20*time.Millisecond {
		t.Errorf("AvgLatency = %v, want 20ms", h.AvgLatency)
	}
	if len(h.Transitions) != 2 || !h.Transitions[1].Online {
		t.Errorf("Expected an online transition, got %+v", h.Transitions)
	}
}

func TestRemoteStatusCheck(t *testing.T) {
	remote := newFakeRemote()
	rs := NewRemoteStatus(remote, 0, zap.NewNop())

	if err := rs.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !rs.IsOnline() {
		t.Error("Remote should be online after a successful ping")
	}

	remote.setFail(true)
	if err := rs.Check(context.Background()); !errors.Is(err, errRemoteDown) {
		t.Errorf("Expected errRemoteDown, got %v", err)
	}
	if rs.IsOnline() {
		t.Error("Remote should be offline after a failed ping")
	}
}

func TestStatusReport(t *testing.T) {
	ctx := context.Background()

	offline := newOfflineEngine(t)
	report := offline.Status(ctx)
	if report.RemoteConfigured {
		t.Error("Offline engine should not report a remote")
	}
	if report.LocalSchemaVersion == 0 {
		t.Error("Local schema version should be reported")
	}
	if report.Origin == "" || report.Origin != offline.Origin() {
		t.Errorf("Unexpected origin %q", report.Origin)
	}

	online := newTestEngine(t, newFakeRemote())
	if _, err := online.GetJobs(ctx); err != nil {
		t.Fatalf("GetJobs failed: %v", err)
	}
	report = online.Status(ctx)
	if !report.RemoteConfigured || !report.Remote.Available {
		t.Errorf("Expected an available remote, got %+v", report.Remote)
	}
	if report.CacheEntries != 1 {
		t.Errorf("CacheEntries = %d, want 1", report.CacheEntries)
	}
}
