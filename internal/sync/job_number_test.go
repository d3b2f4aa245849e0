package sync

import (
	"context"
	"testing"

	"github.com/xelth-com/maintdesk/internal/models"
)

func TestGenerateNextJobID(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	settings := models.DefaultSettings()
	settings.JobTypePrefixes = map[string]string{"ไฟฟ้า": "MTN"}
	if err := e.SaveSettings(ctx, &settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	id, err := e.GenerateNextJobID(ctx, "ไฟฟ้า", "2026-03-15")
	if err != nil {
		t.Fatalf("GenerateNextJobID failed: %v", err)
	}
	if id != "MTN03001/69" {
		t.Errorf("Expected MTN03001/69, got %s", id)
	}

	job := models.Job{JobNumber: id, JobType: "ไฟฟ้า", DateReceived: "2026-03-15"}
	if err := e.SaveJob(ctx, &job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	id, err = e.GenerateNextJobID(ctx, "ไฟฟ้า", "2026-03-15")
	if err != nil {
		t.Fatalf("GenerateNextJobID failed: %v", err)
	}
	if id != "MTN03002/69" {
		t.Errorf("Expected MTN03002/69, got %s", id)
	}
}

func TestGenerateNextJobIDScopesByMonthYearAndPrefix(t *testing.T) {
	ctx := context.Background()
	e := newOfflineEngine(t)

	for _, number := range []string{"JOB03007/69", "JOB04012/69", "JOB03020/68", "PM03050/69", "JOB03x9/69"} {
		job := models.Job{JobNumber: number}
		if err := e.SaveJob(ctx, &job); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	// Unmapped type falls back to the default prefix
	id, err := e.GenerateNextJobID(ctx, "unknown", "2026-03-01")
	if err != nil {
		t.Fatalf("GenerateNextJobID failed: %v", err)
	}
	if id != "JOB03010/69" {
		t.Errorf("Expected JOB03010/69, got %s", id)
	}
}

func TestGenerateNextJobIDRejectsBadDate(t *testing.T) {
	e := newOfflineEngine(t)
	if _, err := e.GenerateNextJobID(context.Background(), "x", "15/03/2026"); err == nil {
		t.Error("Expected error for non-ISO date")
	}
}

func TestJobSequence(t *testing.T) {
	tests := []struct {
		number string
		want   int
		ok     bool
	}{
		{"MTN03001/69", 1, true},
		{"MTN03123/69", 123, true},
		{"MTN031234/69", 1234, true},
		{"MTN03-7/69", 7, true},
		{"MTN03/69", 0, false},
		{"MTN03abc/69", 0, false},
		{"MTN04001/69", 0, false},
		{"MTN03001/68", 0, false},
	}

	for _, tt := range tests {
		got, ok := jobSequence(tt.number, "MTN03", "/69")
		if got != tt.want || ok != tt.ok {
			t.Errorf("jobSequence(%q) = %d, %v; want %d, %v", tt.number, got, ok, tt.want, tt.ok)
		}
	}
}
