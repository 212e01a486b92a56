package device

import (
	"fmt"
	"strings"
)

// Mode is the telephony state of the platform.
type Mode int

// Modes as reported by the platform audio policy.
const (
	ModeNormal Mode = iota
	ModeRingtone
	ModeInCall
	ModeInCommunication
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeRingtone:
		return "ringtone"
	case ModeInCall:
		return "in_call"
	case ModeInCommunication:
		return "in_communication"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "":
		return ModeNormal, nil
	case "ringtone":
		return ModeRingtone, nil
	case "in_call", "incall":
		return ModeInCall, nil
	case "in_communication":
		return ModeInCommunication, nil
	default:
		return ModeNormal, fmt.Errorf("unknown mode %q", s)
	}
}

// TTYMode selects the teletypewriter routing variant used during calls.
type TTYMode int

const (
	TTYOff TTYMode = iota
	TTYFull
	TTYHCO
	TTYVCO
)

func (t TTYMode) String() string {
	switch t {
	case TTYFull:
		return "full"
	case TTYHCO:
		return "hco"
	case TTYVCO:
		return "vco"
	default:
		return "off"
	}
}

// ParseTTYMode maps a parameter value to a TTY mode. Anything unrecognised
// turns TTY off.
func ParseTTYMode(s string) TTYMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return TTYFull
	case "hco":
		return TTYHCO
	case "vco":
		return TTYVCO
	default:
		return TTYOff
	}
}
