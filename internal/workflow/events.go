package workflow

// EventType identifies a workflow action recorded against an application.
// Anything outside the fixed vocabulary degrades to EventCommented rather
// than being rejected, so staff can leave free-form notes.
type EventType string

const (
	// vetting
	EventRejected    EventType = "rejected"
	EventShortlisted EventType = "shortlisted"

	// ready to match
	EventGaveCompanyPreferences EventType = "gaveCompanyPreferences"
	EventMadeMatchSuggestion    EventType = "madeMatchSuggestion"

	// matching
	EventSentToCompany                EventType = "sentToCompany"
	EventArrangedInterviewWithCompany EventType = "arrangedInterviewWithCompany"

	// offer stage
	EventCompanyMadeOffer EventType = "companyMadeOffer"
	EventAcceptedOffer    EventType = "acceptedOffer"
	EventSentContract     EventType = "sentContract"

	// in
	EventSignedContract EventType = "signedContract"
	EventFinalised      EventType = "finalised"

	// out
	EventCompanyRejected   EventType = "companyRejected"
	EventApplicantRejected EventType = "applicantRejected"

	// fallback for anything unrecognized
	EventCommented EventType = "commented"
)

var eventLabels = map[EventType]string{
	EventRejected:                     "rejected",
	EventShortlisted:                  "shortlisted",
	EventGaveCompanyPreferences:       "gave company preferences",
	EventMadeMatchSuggestion:          "made match suggestion",
	EventSentToCompany:                "sent to company",
	EventArrangedInterviewWithCompany: "arranged an interview with company",
	EventCompanyMadeOffer:             "given an offer by company",
	EventAcceptedOffer:                "accepted offer",
	EventSentContract:                 "got sent contract",
	EventSignedContract:               "signed contract",
	EventFinalised:                    "is in the programme",
	EventCompanyRejected:              "was rejected by company",
	EventApplicantRejected:            "found another opportunity",
	EventCommented:                    "commented",
}

// eventStages maps stage-changing event types to the stage they move the
// applicant into. Events absent from this map (comments) leave the stage
// untouched.
var eventStages = map[EventType]Stage{
	EventRejected:                     StageVetted,
	EventShortlisted:                  StageVetted,
	EventGaveCompanyPreferences:       StageReadyToMatch,
	EventMadeMatchSuggestion:          StageReadyToMatch,
	EventSentToCompany:                StageMatching,
	EventArrangedInterviewWithCompany: StageMatching,
	EventCompanyMadeOffer:             StageOffer,
	EventAcceptedOffer:                StageOffer,
	EventSentContract:                 StageOffer,
	EventSignedContract:               StageIn,
	EventFinalised:                    StageIn,
	EventCompanyRejected:              StageOut,
	EventApplicantRejected:            StageOut,
}

// ParseEventType maps a wire string onto the closed vocabulary, degrading
// unknown types to EventCommented.
func ParseEventType(s string) EventType {
	t := EventType(s)
	if _, ok := eventLabels[t]; ok {
		return t
	}
	return EventCommented
}

// Label returns the human-readable form shown in staff event feeds.
func (t EventType) Label() string {
	if label, ok := eventLabels[t]; ok {
		return label
	}
	return eventLabels[EventCommented]
}

// TargetStage returns the stage this event moves an applicant into, if any.
func (t EventType) TargetStage() (Stage, bool) {
	stage, ok := eventStages[t]
	return stage, ok
}
