package session

import (
	"errors"
	"testing"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/ucm"
)

func TestRoundDownPow2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{320, 256},
		{2048, 2048},
		{4096, 4096},
		{4097, 4096},
		{5000, 4096},
		{8191, 4096},
	}
	for _, tt := range tests {
		if got := RoundDownPow2(tt.in); got != tt.want {
			t.Errorf("RoundDownPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRoundDownPow2Property(t *testing.T) {
	for n := 1; n <= 1<<16; n += 7 {
		p := RoundDownPow2(n)
		if p&(p-1) != 0 {
			t.Fatalf("RoundDownPow2(%d) = %d is not a power of two", n, p)
		}
		if p > n || p*2 <= n {
			t.Fatalf("RoundDownPow2(%d) = %d is not the largest power of two <= n", n, p)
		}
	}
}

func TestFactoryDefaultsByKind(t *testing.T) {
	d := DefaultDefaults()
	d.BufferSize = 5000
	f := NewFactory(d)
	l := device.DefaultLayout()

	tests := []struct {
		kind       ucm.Kind
		verbActive bool
		wantCat    Category
		wantUC     ucm.UseCase
		channels   int
		rate       int
		buffer     int
		latency    time.Duration
	}{
		{ucm.KindVoice, false, Voice, ucm.VoiceCall, 1, 8000, 4096, 85 * time.Millisecond},
		{ucm.KindFM, true, FM, ucm.PlayFM, 2, 44100, 2048, 85 * time.Millisecond},
		{ucm.KindMusic, false, Playback, ucm.HiFi, 2, 44100, 4096, 96 * time.Millisecond},
		{ucm.KindLowPower, true, Playback, ucm.PlayLPA, 2, 44100, 4096, 85 * time.Millisecond},
		{ucm.KindRecord, false, Capture, ucm.HiFiRec, 1, 8000, 256, 96 * time.Millisecond},
		{ucm.KindFMRecord, false, Capture, ucm.FMRec, 1, 8000, 256, 96 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, ok := f.Create(tt.kind, l.OutSpeaker, tt.verbActive)
			if !ok {
				t.Fatal("Create refused")
			}
			if s.Category != tt.wantCat || s.UseCase != tt.wantUC {
				t.Errorf("category/use case = %v/%v, want %v/%v", s.Category, s.UseCase, tt.wantCat, tt.wantUC)
			}
			if s.Channels != tt.channels || s.SampleRate != tt.rate {
				t.Errorf("channels/rate = %d/%d, want %d/%d", s.Channels, s.SampleRate, tt.channels, tt.rate)
			}
			if s.BufferSize != tt.buffer {
				t.Errorf("buffer = %d, want %d", s.BufferSize, tt.buffer)
			}
			if s.Latency != tt.latency {
				t.Errorf("latency = %v, want %v", s.Latency, tt.latency)
			}
			if s.Format != FormatS16LE {
				t.Errorf("format = %v", s.Format)
			}
		})
	}
}

func TestFactoryVoiceRecordNeedsVerb(t *testing.T) {
	f := NewFactory(DefaultDefaults())
	if _, ok := f.Create(ucm.KindVoiceRecord, device.DefaultLayout().InVoiceCall, false); ok {
		t.Error("voice record without a verb must be refused")
	}
	s, ok := f.Create(ucm.KindVoiceRecord, device.DefaultLayout().InVoiceCall, true)
	if !ok || s.UseCase != ucm.CaptureVoice {
		t.Errorf("got %v, %v", s, ok)
	}
}

func TestFactoryUniqueIDs(t *testing.T) {
	f := NewFactory(DefaultDefaults())
	a, _ := f.Create(ucm.KindMusic, 1, false)
	b, _ := f.Create(ucm.KindMusic, 1, false)
	if a.ID == b.ID || a.ID == 0 {
		t.Errorf("ids %d and %d", a.ID, b.ID)
	}
}

func TestInputBufferSize(t *testing.T) {
	f := NewFactory(DefaultDefaults())
	tests := []struct {
		name     string
		rate     int
		format   Format
		channels int
		want     int
	}{
		{"narrowband mono", 8000, FormatS16LE, 1, 320},
		{"narrowband stereo", 16000, FormatS16LE, 2, 640},
		{"cd rate", 44100, FormatS16LE, 2, 2560},
		{"wrong format", 8000, Format(10), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.InputBufferSize(tt.rate, tt.format, tt.channels); got != tt.want {
				t.Errorf("InputBufferSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegistryOrderAndCategories(t *testing.T) {
	r := NewRegistry()
	play := &Session{ID: 1, Category: Playback}
	voice := &Session{ID: 2, Category: Voice}
	fm := &Session{ID: 3, Category: FM}

	for _, s := range []*Session{play, voice, fm} {
		if displaced := r.Append(s); displaced != nil {
			t.Fatalf("unexpected displaced session %v", displaced)
		}
	}

	if got, _ := r.MostRecent(); got != fm {
		t.Errorf("MostRecent = %v, want fm", got)
	}

	removed, err := r.RemoveAndClose(Voice, nil)
	if err != nil || removed != voice {
		t.Fatalf("RemoveAndClose = %v, %v", removed, err)
	}

	all := r.All()
	if len(all) != 2 || all[0] != play || all[1] != fm {
		t.Errorf("order after removal = %v", all)
	}

	if _, err := r.RemoveAndClose(FM, nil); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.MostRecent(); got != play {
		t.Errorf("MostRecent after fm removal = %v", got)
	}
}

func TestRegistryReplacesSameCategory(t *testing.T) {
	r := NewRegistry()
	first := &Session{ID: 1, Category: FM}
	second := &Session{ID: 2, Category: FM}
	r.Append(first)
	r.Append(&Session{ID: 3, Category: Playback})

	if displaced := r.Append(second); displaced != first {
		t.Fatalf("displaced = %v, want first", displaced)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
	if got, _ := r.MostRecent(); got != second {
		t.Errorf("replacement should be most recent")
	}
	if _, ok := r.FindID(1); ok {
		t.Error("displaced session still findable")
	}
}

func TestRegistryRemoveClosesBeforeErase(t *testing.T) {
	r := NewRegistry()
	s := &Session{ID: 9, Category: Capture}
	r.Append(s)

	closeErr := errors.New("close failed")
	var sawPresent bool
	_, err := r.RemoveAndClose(Capture, func(got *Session) error {
		_, sawPresent = r.Find(Capture)
		return closeErr
	})

	if !sawPresent {
		t.Error("session must still be registered while closing")
	}
	if !errors.Is(err, closeErr) {
		t.Errorf("err = %v", err)
	}
	if r.Len() != 0 {
		t.Error("entry must be erased even when close fails")
	}
}

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.MostRecent(); ok {
		t.Error("empty registry has no most recent session")
	}
	if s, err := r.RemoveAndClose(Voice, nil); s != nil || err != nil {
		t.Errorf("removing missing category = %v, %v", s, err)
	}
}
