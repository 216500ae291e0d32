package switchmodel

import (
	"context"
	"testing"
	"time"
)

func TestCommit_DurationExcludesFinishDwell(t *testing.T) {
	const dwell = 300 * time.Millisecond

	var recorded []time.Duration
	saved := recordCommitDuration
	recordCommitDuration = func(_ context.Context, switchName string, d time.Duration) {
		if switchName != "test" {
			t.Errorf("switch label = %q, want %q", switchName, "test")
		}
		recorded = append(recorded, d)
	}
	t.Cleanup(func() { recordCommitDuration = saved })

	s := New("test", &stateBackend{st: threeVlanState()}, WithFinishDwell(dwell))
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	s.Port(1).SetDescription("uplink")

	begin := time.Now()
	if err := s.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	if elapsed := time.Since(begin); elapsed < dwell {
		t.Fatalf("Commit() returned after %v, before the %v dwell", elapsed, dwell)
	}

	if len(recorded) != 1 {
		t.Fatalf("recorded %d durations, want 1", len(recorded))
	}
	if recorded[0] >= dwell {
		t.Errorf("recorded duration %v includes the %v finish dwell", recorded[0], dwell)
	}
}

func TestCommit_FailureRecordsNoDuration(t *testing.T) {
	saved := recordCommitDuration
	recordCommitDuration = func(context.Context, string, time.Duration) {
		t.Error("a failed commit recorded a duration")
	}
	t.Cleanup(func() { recordCommitDuration = saved })

	s := New("test", &failingBackend{stateBackend{st: threeVlanState()}}, WithFinishDwell(0))
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	s.Port(1).SetDescription("uplink")
	if err := s.Commit(context.Background()); err == nil {
		t.Fatal("Commit() succeeded, want the description write to fail")
	}
}

// failingBackend rejects port description writes.
type failingBackend struct {
	stateBackend
}

func (b *failingBackend) CommitPortDescription(context.Context, *Port, string) error {
	return context.DeadlineExceeded
}
