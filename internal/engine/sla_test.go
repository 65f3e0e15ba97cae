package engine

import (
	"testing"
	"time"

	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/store"
)

func snapshotAt(ts time.Time, avg, p95, availability, errorRate, throughput float64) models.PerformanceSnapshot {
	return models.PerformanceSnapshot{
		Timestamp:       ts,
		ResponseTimeAvg: avg,
		ResponseTimeP95: p95,
		Availability:    availability,
		ErrorRate:       errorRate,
		Throughput:      throughput,
	}
}

func TestSLAStatusNoData(t *testing.T) {
	e := NewSLAEvaluator(SLATargets{}, store.NewSnapshotStore(10))
	status := e.Status(24 * time.Hour)

	if status.Status != "no_data" {
		t.Fatalf("status = %s, want no_data", status.Status)
	}
	if status.Samples != 0 {
		t.Fatalf("samples = %d", status.Samples)
	}
}

func TestSLAStatusCompliant(t *testing.T) {
	snapshots := store.NewSnapshotStore(10)
	now := time.Now().UTC()
	snapshots.Add(snapshotAt(now.Add(-2*time.Hour), 180.2, 430, 99.95, 0.4, 130))
	snapshots.Add(snapshotAt(now.Add(-time.Hour), 184.7, 460, 99.97, 0.6, 110))

	e := NewSLAEvaluator(SLATargets{}, snapshots)
	status := e.Status(24 * time.Hour)

	if status.Status != "compliant" {
		t.Fatalf("status = %s, breaches = %+v", status.Status, status.Breaches)
	}
	if len(status.Breaches) != 0 {
		t.Fatalf("expected no breaches, got %+v", status.Breaches)
	}
	if status.Samples != 2 {
		t.Fatalf("samples = %d", status.Samples)
	}

	avg := status.Metrics["response_time_avg"]
	if avg.Value < 182.4 || avg.Value > 182.5 {
		t.Fatalf("avg response time = %f, want ~182.45", avg.Value)
	}
	if !avg.Compliant {
		t.Fatalf("avg response time should be compliant against %f", avg.Target)
	}
}

func TestSLAStatusBreach(t *testing.T) {
	snapshots := store.NewSnapshotStore(10)
	now := time.Now().UTC()
	snapshots.Add(snapshotAt(now.Add(-time.Hour), 150, 400, 99.95, 2.5, 120))

	e := NewSLAEvaluator(SLATargets{}, snapshots)
	status := e.Status(24 * time.Hour)

	if status.Status != "breach" {
		t.Fatalf("status = %s, want breach", status.Status)
	}
	if len(status.Breaches) != 1 || status.Breaches[0].Dimension != "error_rate" {
		t.Fatalf("breaches = %+v", status.Breaches)
	}
}

func TestSLAStatusIgnoresOldSnapshots(t *testing.T) {
	snapshots := store.NewSnapshotStore(10)
	now := time.Now().UTC()
	snapshots.Add(snapshotAt(now.Add(-48*time.Hour), 9000, 9000, 10, 50, 1))
	snapshots.Add(snapshotAt(now.Add(-time.Hour), 150, 400, 99.95, 0.2, 120))

	e := NewSLAEvaluator(SLATargets{}, snapshots)
	status := e.Status(24 * time.Hour)

	if status.Status != "compliant" {
		t.Fatalf("old snapshot leaked into period: %+v", status)
	}
	if status.Samples != 1 {
		t.Fatalf("samples = %d, want 1", status.Samples)
	}
}

func TestDefaultSLATargets(t *testing.T) {
	targets := DefaultSLATargets()
	if targets.ResponseTimeAvgMs != 200 || targets.ResponseTimeP95Ms != 500 {
		t.Fatalf("latency targets = %+v", targets)
	}
	if targets.AvailabilityPct != 99.9 || targets.ErrorRatePct != 1.0 || targets.ThroughputRPS != 100 {
		t.Fatalf("targets = %+v", targets)
	}
}
