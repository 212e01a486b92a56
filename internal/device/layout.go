package device

import (
	"fmt"
	"sort"
	"strings"
)

// Layout assigns a mask bit to every endpoint the router knows about. The
// assignment belongs to the platform and is loaded from the [devices] table of
// the configuration file.
type Layout struct {
	OutEarpiece            Mask `toml:"earpiece"`
	OutSpeaker             Mask `toml:"speaker"`
	OutWiredHeadset        Mask `toml:"wired_headset"`
	OutWiredHeadphone      Mask `toml:"wired_headphone"`
	OutBluetoothSCO        Mask `toml:"bt_sco"`
	OutBluetoothSCOHeadset Mask `toml:"bt_sco_headset"`
	OutBluetoothSCOCarkit  Mask `toml:"bt_sco_carkit"`
	OutANCHeadset          Mask `toml:"anc_headset"`
	OutANCHeadphone        Mask `toml:"anc_headphone"`
	OutFM                  Mask `toml:"fm"`
	OutFMTx                Mask `toml:"fm_tx"`

	InBuiltinMic          Mask `toml:"in_builtin_mic"`
	InBackMic             Mask `toml:"in_back_mic"`
	InWiredHeadset        Mask `toml:"in_wired_headset"`
	InBluetoothSCOHeadset Mask `toml:"in_bt_sco_headset"`
	InANCHeadset          Mask `toml:"in_anc_headset"`
	InDefault             Mask `toml:"in_default"`
	InVoiceCall           Mask `toml:"in_voice_call"`
	InFMRx                Mask `toml:"in_fm_rx"`
	InFMRxA2DP            Mask `toml:"in_fm_rx_a2dp"`
}

// DefaultLayout returns the assignment used when no [devices] table is given.
func DefaultLayout() Layout {
	return Layout{
		OutEarpiece:            0x1,
		OutSpeaker:             0x2,
		OutWiredHeadset:        0x4,
		OutWiredHeadphone:      0x8,
		OutBluetoothSCO:        0x10,
		OutBluetoothSCOHeadset: 0x20,
		OutBluetoothSCOCarkit:  0x40,
		OutFM:                  0x800,
		OutFMTx:                0x1000,
		OutANCHeadset:          0x2000,
		OutANCHeadphone:        0x4000,

		InBuiltinMic:          0x40000,
		InBluetoothSCOHeadset: 0x80000,
		InWiredHeadset:        0x100000,
		InVoiceCall:           0x400000,
		InBackMic:             0x800000,
		InANCHeadset:          0x2000000,
		InFMRx:                0x4000000,
		InFMRxA2DP:            0x8000000,
		InDefault:             0x80000000,
	}
}

type endpoint struct {
	name string
	bit  Mask
}

func (l Layout) endpoints() []endpoint {
	return []endpoint{
		{"earpiece", l.OutEarpiece},
		{"speaker", l.OutSpeaker},
		{"wired_headset", l.OutWiredHeadset},
		{"wired_headphone", l.OutWiredHeadphone},
		{"bt_sco", l.OutBluetoothSCO},
		{"bt_sco_headset", l.OutBluetoothSCOHeadset},
		{"bt_sco_carkit", l.OutBluetoothSCOCarkit},
		{"anc_headset", l.OutANCHeadset},
		{"anc_headphone", l.OutANCHeadphone},
		{"fm", l.OutFM},
		{"fm_tx", l.OutFMTx},
		{"in_builtin_mic", l.InBuiltinMic},
		{"in_back_mic", l.InBackMic},
		{"in_wired_headset", l.InWiredHeadset},
		{"in_bt_sco_headset", l.InBluetoothSCOHeadset},
		{"in_anc_headset", l.InANCHeadset},
		{"in_default", l.InDefault},
		{"in_voice_call", l.InVoiceCall},
		{"in_fm_rx", l.InFMRx},
		{"in_fm_rx_a2dp", l.InFMRxA2DP},
	}
}

// Validate checks that every endpoint owns exactly one bit and that no two
// endpoints share a bit.
func (l Layout) Validate() error {
	seen := make(map[Mask]string)
	for _, ep := range l.endpoints() {
		if !ep.bit.IsSingle() {
			return fmt.Errorf("device %q: mask 0x%x is not a single bit", ep.name, uint32(ep.bit))
		}
		if other, dup := seen[ep.bit]; dup {
			return fmt.Errorf("device %q: bit 0x%x already assigned to %q", ep.name, uint32(ep.bit), other)
		}
		seen[ep.bit] = ep.name
	}
	return nil
}

// Names returns the endpoint names present in mask. Unknown bits are rendered
// in hex so nothing is silently dropped from logs.
func (l Layout) Names(mask Mask) []string {
	var names []string
	var known Mask
	for _, ep := range l.endpoints() {
		if mask.Has(ep.bit) {
			names = append(names, ep.name)
			known |= ep.bit
		}
	}
	if rest := mask &^ known; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return names
}

// String renders mask as a "+" joined list of endpoint names.
func (l Layout) String(mask Mask) string {
	if mask == 0 {
		return "none"
	}
	return strings.Join(l.Names(mask), "+")
}

// Parse builds a mask from endpoint names.
func (l Layout) Parse(names []string) (Mask, error) {
	byName := make(map[string]Mask)
	for _, ep := range l.endpoints() {
		byName[ep.name] = ep.bit
	}
	var mask Mask
	for _, n := range names {
		bit, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown device %q (known: %s)", n, strings.Join(l.Known(), ", "))
		}
		mask |= bit
	}
	return mask, nil
}

// Known lists every endpoint name, sorted.
func (l Layout) Known() []string {
	eps := l.endpoints()
	names := make([]string, len(eps))
	for i, ep := range eps {
		names[i] = ep.name
	}
	sort.Strings(names)
	return names
}

// Bits returns the bit of every endpoint keyed by name.
func (l Layout) Bits() map[string]Mask {
	eps := l.endpoints()
	bits := make(map[string]Mask, len(eps))
	for _, ep := range eps {
		bits[ep.name] = ep.bit
	}
	return bits
}
