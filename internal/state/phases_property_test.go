package state

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/codelens/driftscan/internal/settings"
)

// After N consecutive CompletePhase calls the machine sits at index
// min(N, len(sequence)-1) of the fixed phase list and history holds exactly
// N entries in call order.
func TestCompletePhaseAdvancementProperty(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(t *rapid.T) {
		// Create replaces any document from the previous iteration.
		store := NewStore(dir)
		if _, err := store.Create(settings.Default()); err != nil {
			t.Fatalf("create: %v", err)
		}

		seq := PhaseSequence()
		n := rapid.IntRange(0, 8).Draw(t, "completions")

		for i := 0; i < n; i++ {
			if _, err := store.CompletePhase(nil); err != nil {
				t.Fatalf("complete %d: %v", i, err)
			}
		}

		st, err := store.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}

		wantIdx := n
		if wantIdx > len(seq)-1 {
			wantIdx = len(seq) - 1
		}
		if st.Phase.Current != seq[wantIdx] {
			t.Fatalf("after %d completions current = %q, want %q", n, st.Phase.Current, seq[wantIdx])
		}
		if len(st.Phase.History) != n {
			t.Fatalf("after %d completions history has %d entries", n, len(st.Phase.History))
		}
		for i := 1; i < len(st.Phase.History); i++ {
			if st.Phase.History[i].StartedAt.Before(st.Phase.History[i-1].StartedAt) {
				t.Fatalf("history entry %d starts before entry %d", i, i-1)
			}
		}
		if n >= len(seq)-1 {
			if st.Status != StatusCompleted || st.CompletedAt == nil {
				t.Fatalf("terminal phase reached but run not completed: %+v", st.Status)
			}
		}
	})
}

// StartPhase accepts exactly the members of the fixed sequence.
func TestStartPhaseValidityProperty(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(t *rapid.T) {
		store := NewStore(dir)
		if _, err := store.Create(settings.Default()); err != nil {
			t.Fatalf("create: %v", err)
		}

		name := rapid.StringMatching(`[a-z-]{1,20}`).Draw(t, "phase")
		_, err := store.StartPhase(Phase(name))
		if ValidPhase(Phase(name)) {
			if err != nil {
				t.Fatalf("valid phase %q rejected: %v", name, err)
			}
		} else if err == nil {
			t.Fatalf("invalid phase %q accepted", name)
		}
	})
}
