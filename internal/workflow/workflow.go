// Package workflow defines the applicant pipeline: the persisted stage enum,
// the legal transitions between stages, and the vocabulary of audit events
// that staff actions append to an application.
package workflow

// Stage is the applicant's position in the vetting/matching/offer pipeline.
type Stage string

const (
	StageUnfinished   Stage = "unfinished"
	StageFinished     Stage = "finished"
	StageVetted       Stage = "vetted"
	StageReadyToMatch Stage = "readyToMatch"
	StageMatching     Stage = "matching"
	StageOffer        Stage = "offer"
	StageIn           Stage = "in"
	StageOut          Stage = "out"
)

// transitions lists the legal forward moves. Terminal stages have no entry.
var transitions = map[Stage][]Stage{
	StageUnfinished:   {StageFinished},
	StageFinished:     {StageVetted},
	StageVetted:       {StageReadyToMatch, StageOut},
	StageReadyToMatch: {StageMatching, StageOut},
	StageMatching:     {StageOffer, StageOut},
	StageOffer:        {StageIn, StageOut},
}

// CanTransition reports whether moving from one stage directly to another is
// legal. Staying on the same stage is always allowed (repeated events within
// a stage do not move the applicant).
func CanTransition(from, to Stage) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Known reports whether s is one of the pipeline stages.
func (s Stage) Known() bool {
	switch s {
	case StageUnfinished, StageFinished, StageVetted, StageReadyToMatch,
		StageMatching, StageOffer, StageIn, StageOut:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s Stage) Terminal() bool {
	return len(transitions[s]) == 0 && s.Known()
}
