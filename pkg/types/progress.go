package types

// ProgressPhase is a phase of query processing surfaced to the UI.
type ProgressPhase string

const (
	PhaseAnalysing          ProgressPhase = "analysing"
	PhaseReadingAttachments ProgressPhase = "reading-attachments"
	PhaseGenerating         ProgressPhase = "generating"
	PhaseToolDispatch       ProgressPhase = "tool-dispatch"
	PhaseDone               ProgressPhase = "done"
	PhaseError              ProgressPhase = "error"
	PhaseCancelled          ProgressPhase = "cancelled"
)

// QueryProgress is a small state machine over processing phases.
// reading-attachments may repeat with a monotonically increasing
// completed/total counter; done, error and cancelled are terminal.
type QueryProgress struct {
	Phase     ProgressPhase `json:"phase"`
	Message   string        `json:"message,omitempty"`
	Completed int           `json:"completed,omitempty"`
	Total     int           `json:"total,omitempty"`
}

// Terminal reports whether the phase admits no further transitions.
func (p QueryProgress) Terminal() bool {
	switch p.Phase {
	case PhaseDone, PhaseError, PhaseCancelled:
		return true
	}
	return false
}

// Advance returns next unless p is already terminal, in which case p is
// returned unchanged. The reading-attachments counter never decreases.
func (p QueryProgress) Advance(next QueryProgress) QueryProgress {
	if p.Terminal() {
		return p
	}
	if next.Phase == PhaseReadingAttachments && p.Phase == PhaseReadingAttachments {
		if next.Completed < p.Completed {
			next.Completed = p.Completed
		}
	}
	return next
}
