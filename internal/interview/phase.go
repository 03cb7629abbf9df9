package interview

// Phase is the topical mode the interviewer is in.
type Phase string

const (
	// PhaseRapport covers personal, educational and career-background questions.
	PhaseRapport Phase = "RAPPORT"
	// PhaseTechnical covers technology- and project-grounded questions.
	PhaseTechnical Phase = "TECHNICAL"
)

// RapportTurns is the number of transcript turns that still count as rapport.
// The first technical question is generated once the transcript holds
// RapportTurns+1 turns.
const RapportTurns = 4

// SelectPhase maps a transcript length to the phase of the next question.
func SelectPhase(transcriptLength int) Phase {
	if transcriptLength <= RapportTurns {
		return PhaseRapport
	}
	return PhaseTechnical
}

func (p Phase) String() string { return string(p) }
