// Package ucm adapts the external use case manager: a registry holding one
// active verb plus the modifiers layered on top of it.
package ucm

// UseCase is one verb or modifier known to the router.
type UseCase int

const (
	None UseCase = iota

	// Verbs.
	Inactive
	HiFi
	HiFiLowPower
	HiFiRec
	VoiceCall
	DigitalRadio
	FMRec

	// Modifiers.
	PlayMusic
	PlayLPA
	PlayVoice
	PlayFM
	CaptureMusic
	CaptureVoice
	CaptureFM
)

var names = map[UseCase]string{
	Inactive:     "Inactive",
	HiFi:         "HiFi",
	HiFiLowPower: "HiFi Low Power",
	HiFiRec:      "HiFi Rec",
	VoiceCall:    "Voice Call",
	DigitalRadio: "Digital Radio",
	FMRec:        "FM REC",
	PlayMusic:    "Play Music",
	PlayLPA:      "Play LPA",
	PlayVoice:    "Play Voice",
	PlayFM:       "Play FM",
	CaptureMusic: "Capture Music",
	CaptureVoice: "Capture Voice",
	CaptureFM:    "Capture FM",
}

// String returns the registry name of the use case.
func (u UseCase) String() string {
	if n, ok := names[u]; ok {
		return n
	}
	return ""
}

// IsVerb reports whether u is set with SetVerb rather than SetModifier.
func (u UseCase) IsVerb() bool {
	return u >= Inactive && u <= FMRec
}

// IsModifier reports whether u layers on an existing verb.
func (u UseCase) IsModifier() bool {
	return u >= PlayMusic && u <= CaptureFM
}

// ParseUseCase maps a registry name back to its UseCase.
func ParseUseCase(name string) UseCase {
	for u, n := range names {
		if n == name {
			return u
		}
	}
	return None
}

// Kind is the activity a session performs.
type Kind int

const (
	KindMusic Kind = iota
	KindLowPower
	KindVoice
	KindFM
	KindRecord
	KindVoiceRecord
	KindFMRecord
)

func (k Kind) String() string {
	switch k {
	case KindMusic:
		return "music"
	case KindLowPower:
		return "low_power"
	case KindVoice:
		return "voice"
	case KindFM:
		return "fm"
	case KindRecord:
		return "record"
	case KindVoiceRecord:
		return "voice_record"
	case KindFMRecord:
		return "fm_record"
	default:
		return "unknown"
	}
}

var choices = map[Kind][2]UseCase{
	//                 verb inactive  verb active
	KindMusic:       {HiFi, PlayMusic},
	KindLowPower:    {HiFiLowPower, PlayLPA},
	KindVoice:       {VoiceCall, PlayVoice},
	KindFM:          {DigitalRadio, PlayFM},
	KindRecord:      {HiFiRec, CaptureMusic},
	KindVoiceRecord: {None, CaptureVoice},
	KindFMRecord:    {FMRec, CaptureFM},
}

// Select picks the use case for kind. The first session of its kind promotes
// to a verb; later ones layer a modifier on the active verb. The bool is false
// when kind has no valid use case in the current state, which is the case for
// voice call recording with no verb up.
func Select(kind Kind, verbActive bool) (UseCase, bool) {
	c, ok := choices[kind]
	if !ok {
		return None, false
	}
	u := c[0]
	if verbActive {
		u = c[1]
	}
	return u, u != None
}

// VerbActive reports whether verb names a real activity.
func VerbActive(verb string) bool {
	return verb != "" && verb != Inactive.String()
}
