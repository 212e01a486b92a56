//go:build linux

// Package alsa provides pure Go bindings to the ALSA (Advanced Linux Sound Architecture)
// kernel interface for PCM enumeration, capability queries and opening PCM nodes.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use ListDevices to discover PCM endpoints in both directions:
//
//	devices, err := alsa.ListDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s %s: %s (%s)\n", dev.ALSADevice, dev.Type, dev.DeviceName, dev.CardName)
//	    fmt.Printf("  Rates: %v\n", dev.SupportedRates)
//	}
//
// # Opening a PCM
//
// Open negotiates hardware parameters and prepares the stream:
//
//	pcm, err := alsa.Open(0, 0, alsa.StreamPlayback, alsa.Config{
//	    Format: alsa.FormatS16LE, Channels: 2, Rate: 48000,
//	})
//	defer pcm.Close()
//
// Hostless paths (modem or FM links that move audio inside the codec) only
// need Start after Open.
package alsa
