package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSessionGauges(t *testing.T) {
	before := testutil.ToFloat64(sessionsActive.WithLabelValues("capture"))

	RecordSessionOpened("capture", "HiFi Rec")
	RecordSessionOpened("capture", "Capture Music")
	RecordSessionClosed("capture", "replaced")

	if got := testutil.ToFloat64(sessionsActive.WithLabelValues("capture")); got != before+1 {
		t.Errorf("active capture sessions = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(sessionsClosed.WithLabelValues("capture", "replaced")); got < 1 {
		t.Errorf("closed counter = %v, want >= 1", got)
	}
}

func TestStateGauges(t *testing.T) {
	SetVoiceCallActive(true)
	if got := testutil.ToFloat64(voiceCallActive); got != 1 {
		t.Errorf("voice_call_active = %v, want 1", got)
	}
	SetVoiceCallActive(false)
	if got := testutil.ToFloat64(voiceCallActive); got != 0 {
		t.Errorf("voice_call_active = %v, want 0", got)
	}

	SetFMActive(true)
	if got := testutil.ToFloat64(fmActive); got != 1 {
		t.Errorf("fm_active = %v, want 1", got)
	}
}

func TestPCMSubstreamsReset(t *testing.T) {
	SetPCMSubstreams("hw:0,0", "playback", 1)
	SetPCMSubstreams("hw:0,0", "capture", 1)
	if n := testutil.CollectAndCount(pcmSubstreams); n != 2 {
		t.Errorf("series = %d, want 2", n)
	}
	ResetPCMSubstreams()
	if n := testutil.CollectAndCount(pcmSubstreams); n != 0 {
		t.Errorf("series after reset = %d, want 0", n)
	}
}
