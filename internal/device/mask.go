// Package device holds the device mask algebra: a bitset over physical audio
// endpoints and the pure transforms applied to it before routing.
package device

import "math/bits"

// Mask is a set of physical endpoints. Each bit is one input or output device.
type Mask uint32

// IsSingle reports whether exactly one device bit is set.
func (m Mask) IsSingle() bool {
	return m != 0 && m&(m-1) == 0
}

// Has reports whether any bit of other is present in m.
func (m Mask) Has(other Mask) bool {
	return m&other != 0
}

// Count returns the number of devices in the mask.
func (m Mask) Count() int {
	return bits.OnesCount32(uint32(m))
}

// SubstituteANCHeadset folds ANC headset state into mask.
//
// With ANC active a wired headset bit is swapped for its ANC counterpart. An
// empty mask means "re-route the current device", so the replacement is inferred
// from last, the mask of the most recently opened session. The returned bool is
// false when ANC is active, the mask is empty and no headset was in use: the
// caller must not route at all.
//
// With ANC inactive only the empty mask case is handled, restoring the plain
// wired headset bit if the last session was on an ANC headset.
func (l Layout) SubstituteANCHeadset(mask Mask, ancActive bool, last Mask) (Mask, bool) {
	if ancActive {
		switch {
		case mask.Has(l.OutWiredHeadset):
			return mask&^l.OutWiredHeadset | l.OutANCHeadset, true
		case mask.Has(l.InWiredHeadset):
			return mask&^l.InWiredHeadset | l.InANCHeadset, true
		case mask == 0:
			switch {
			case last.Has(l.OutWiredHeadset):
				return l.OutANCHeadset, true
			case last.Has(l.InWiredHeadset):
				return l.InANCHeadset, true
			}
			return 0, false
		}
		return mask, true
	}

	if mask == 0 {
		switch {
		case last.Has(l.OutANCHeadset):
			return l.OutWiredHeadset, true
		case last.Has(l.InANCHeadset):
			return l.InWiredHeadset, true
		}
	}
	return mask, true
}

// ApplyInCallSymmetry expands a one sided request into the matching input and
// output pair while a call is up. Rules are checked in priority order and only
// the first match applies.
func (l Layout) ApplyInCallSymmetry(mask Mask, mode Mode) Mask {
	if mode != ModeInCall {
		return mask
	}
	switch {
	case mask.Has(l.OutWiredHeadset | l.InWiredHeadset):
		return mask | l.OutWiredHeadset | l.InWiredHeadset
	case mask.Has(l.OutWiredHeadphone):
		return mask | l.OutWiredHeadphone | l.InBuiltinMic
	case mask.Has(l.OutEarpiece | l.InBuiltinMic):
		return mask | l.InBuiltinMic | l.OutEarpiece
	case mask.Has(l.OutSpeaker):
		return mask | l.InDefault | l.OutSpeaker
	case mask.Has(l.OutBluetoothSCO | l.OutBluetoothSCOHeadset | l.InBluetoothSCOHeadset):
		return mask | l.InBluetoothSCOHeadset | l.OutBluetoothSCO
	case mask.Has(l.OutANCHeadset | l.InANCHeadset):
		return mask | l.OutANCHeadset | l.InANCHeadset
	case mask.Has(l.OutANCHeadphone):
		return mask | l.OutANCHeadphone | l.InBuiltinMic
	}
	return mask
}

// ApplyDualMic adds the back mic next to the built-in mic when dual mic is on,
// and strips a stray back mic bit when it is off.
func (l Layout) ApplyDualMic(mask Mask, dualMicActive bool) Mask {
	switch {
	case mask.Has(l.InBuiltinMic) && dualMicActive:
		return mask | l.InBackMic
	case mask.Has(l.InBackMic) && !dualMicActive:
		return mask &^ l.InBackMic
	}
	return mask
}

// IsCaptureOnly reports whether mask names one of the reserved recording
// endpoints (voice call uplink or FM receive). Those never drive routing.
func (l Layout) IsCaptureOnly(mask Mask) bool {
	return mask == l.InVoiceCall || mask == l.InFMRx || mask == l.InFMRxA2DP
}

// IsFMCapture reports whether mask is one of the FM receive endpoints.
func (l Layout) IsFMCapture(mask Mask) bool {
	return mask == l.InFMRx || mask == l.InFMRxA2DP
}
