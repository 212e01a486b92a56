// Package routing decides which sessions to start, stop or re-route when the
// requested devices, the telephony mode or an accessory changes.
package routing

import "github.com/smazurov/audiohal/internal/device"

// Accessories are the user toggles folded into every route.
type Accessories struct {
	DualMic      bool           `json:"dual_mic" toml:"dual_mic"`
	ANC          bool           `json:"anc" toml:"anc"`
	TTY          device.TTYMode `json:"-" toml:"-"`
	BluetoothVGS bool           `json:"bt_vgs" toml:"bt_vgs"`
}

// State is everything the engine reads and writes besides the registry. The
// caller owns it and must serialize access.
type State struct {
	Mode device.Mode
	Accessories

	VoiceCallActive bool
	FMActive        bool
}
