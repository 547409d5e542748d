package state

// Phase is one stage of the fixed scan sequence.
type Phase string

const (
	PhaseSettingsCheck    Phase = "settings-check"
	PhaseParallelScan     Phase = "parallel-scan"
	PhaseSynthesis        Phase = "synthesis"
	PhaseReportGeneration Phase = "report-generation"
	PhaseComplete         Phase = "complete"
)

// PhaseSequence returns the fixed ordered phase list. Transitions only move
// forward through this sequence or jump to the terminal PhaseComplete.
func PhaseSequence() []Phase {
	return []Phase{
		PhaseSettingsCheck,
		PhaseParallelScan,
		PhaseSynthesis,
		PhaseReportGeneration,
		PhaseComplete,
	}
}

// ValidPhase reports whether p is a member of the fixed sequence.
func ValidPhase(p Phase) bool {
	return phaseIndex(p) >= 0
}

func phaseIndex(p Phase) int {
	for i, q := range PhaseSequence() {
		if p == q {
			return i
		}
	}
	return -1
}

// nextPhase returns the phase after p, or PhaseComplete when p is already
// the last phase (or unknown).
func nextPhase(p Phase) Phase {
	seq := PhaseSequence()
	i := phaseIndex(p)
	if i < 0 || i >= len(seq)-1 {
		return PhaseComplete
	}
	return seq[i+1]
}
