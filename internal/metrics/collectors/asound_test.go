package collectors

import (
	"strings"
	"testing"
)

func TestParsePCMLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantName     string
		wantPlayback int
		wantCapture  int
		wantErr      bool
	}{
		{
			name:         "duplex",
			line:         "00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1",
			wantName:     "hw:0,0",
			wantPlayback: 1,
			wantCapture:  1,
		},
		{
			name:         "playback only",
			line:         "01-03: HDMI 0 : HDMI 0 : playback 1",
			wantName:     "hw:1,3",
			wantPlayback: 1,
		},
		{
			name:        "multiple capture substreams",
			line:        "02-00: USB Audio : USB Audio : capture 2",
			wantName:    "hw:2,0",
			wantCapture: 2,
		},
		{
			name:    "no substreams",
			line:    "00-00: ALC892 Analog : ALC892 Analog",
			wantErr: true,
		},
		{
			name:    "bad id",
			line:    "card0: x : y : playback 1",
			wantErr: true,
		},
		{
			name:    "insufficient fields",
			line:    "00-00",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm, err := parsePCMLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pcm.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", pcm.Name, tt.wantName)
			}
			if pcm.Substreams["playback"] != tt.wantPlayback {
				t.Errorf("playback = %d, want %d", pcm.Substreams["playback"], tt.wantPlayback)
			}
			if pcm.Substreams["capture"] != tt.wantCapture {
				t.Errorf("capture = %d, want %d", pcm.Substreams["capture"], tt.wantCapture)
			}
		})
	}
}

func TestParsePCMList(t *testing.T) {
	content := `00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1

garbage line
00-01: ALC892 Digital : ALC892 Digital : playback 1
`
	pcms, err := parsePCMList(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if len(pcms) != 2 {
		t.Fatalf("got %d entries, want 2", len(pcms))
	}
	if pcms[1].ID != "ALC892 Digital" {
		t.Errorf("ID = %q", pcms[1].ID)
	}
}

func TestPCMCollectorMissingFile(t *testing.T) {
	p := NewPCMCollector(0)
	p.procPath = t.TempDir() + "/missing"
	p.collect()
	if p.interval <= 0 {
		t.Error("default interval not applied")
	}
}
