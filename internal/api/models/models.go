package models

import (
	"time"

	"github.com/smazurov/audiohal/internal/driver"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"OS and architecture"`
}

type VersionResponse struct {
	Body VersionData
}

// Accessory models
type AccessoriesData struct {
	DualMic      bool   `json:"dual_mic" doc:"Dual microphone noise suppression"`
	ANC          bool   `json:"anc" doc:"Active noise cancelling headset substitution"`
	TTYMode      string `json:"tty_mode" example:"off" enum:"off,full,hco,vco" doc:"TTY mode"`
	BluetoothVGS bool   `json:"bt_vgs" doc:"Bluetooth headset volume control"`
}

type AccessoriesResponse struct {
	Body AccessoriesData
}

// AccessoriesRequest only changes the fields that are present.
type AccessoriesRequest struct {
	Body struct {
		DualMic      *bool   `json:"dual_mic,omitempty" doc:"Dual microphone noise suppression"`
		ANC          *bool   `json:"anc,omitempty" doc:"ANC headset substitution"`
		TTYMode      *string `json:"tty_mode,omitempty" enum:"off,full,hco,vco" doc:"TTY mode"`
		BluetoothVGS *bool   `json:"bt_vgs,omitempty" doc:"Bluetooth headset volume control"`
	}
}

// Session models
type SessionData struct {
	ID          uint64    `json:"id" example:"3" doc:"Session identifier"`
	Category    string    `json:"category" example:"playback" doc:"Session category"`
	UseCase     string    `json:"use_case" example:"HiFi" doc:"Enabled use case"`
	Devices     uint32    `json:"devices" example:"2" doc:"Device mask"`
	DeviceNames []string  `json:"device_names" doc:"Devices in the mask"`
	Format      string    `json:"format" example:"S16_LE" doc:"Sample format"`
	Channels    int       `json:"channels" example:"2" doc:"Channel count"`
	SampleRate  int       `json:"sample_rate" example:"44100" doc:"Sample rate in Hz"`
	BufferSize  int       `json:"buffer_size" example:"4096" doc:"Buffer size in bytes"`
	LatencyMs   int64     `json:"latency_ms" example:"96" doc:"Nominal latency in milliseconds"`
	OpenedAt    time.Time `json:"opened_at" doc:"When the session was opened"`
}

type SessionResponse struct {
	Body SessionData
}

type SessionListData struct {
	Sessions []SessionData `json:"sessions" doc:"Open sessions, oldest first"`
	Count    int           `json:"count" example:"2" doc:"Number of open sessions"`
}

type SessionListResponse struct {
	Body SessionListData
}

type SessionCreateRequest struct {
	Body struct {
		Direction  string `json:"direction" enum:"output,input" example:"output" doc:"Playback or capture"`
		Device     string `json:"device" example:"speaker" doc:"Exactly one device name"`
		LowPower   bool   `json:"low_power,omitempty" doc:"Use the low power playback path"`
		SampleRate int    `json:"sample_rate,omitempty" minimum:"0" example:"16000" doc:"Capture sample rate, 0 for default"`
		Channels   int    `json:"channels,omitempty" minimum:"0" maximum:"8" example:"1" doc:"Capture channels, 0 for default"`
	}
}

type SessionDeleteRequest struct {
	ID uint64 `path:"id" example:"3" doc:"Session identifier"`
}

// State models
type StateData struct {
	Mode            string          `json:"mode" example:"normal" doc:"Telephony mode"`
	Accessories     AccessoriesData `json:"accessories" doc:"Accessory flags"`
	VoiceCallActive bool            `json:"voice_call_active" doc:"Whether a voice call is up"`
	FMActive        bool            `json:"fm_active" doc:"Whether FM radio is playing"`
	MicMuted        bool            `json:"mic_muted" doc:"Whether the microphone is muted"`
	Verb            string          `json:"verb" example:"HiFi" doc:"Active use case verb"`
	Modifiers       []string        `json:"modifiers" doc:"Active use case modifiers"`
	Transport       string          `json:"transport" example:"alsa" doc:"Driver backend"`
	Sessions        []SessionData   `json:"sessions" doc:"Open sessions, oldest first"`
}

type StateResponse struct {
	Body StateData
}

// Routing models
type RouteRequest struct {
	Body struct {
		Devices []string `json:"devices" example:"[\"speaker\"]" doc:"Device names; empty re-routes the current devices"`
	}
}

type RouteResponse struct {
	Body struct {
		Devices []string `json:"devices" doc:"Devices requested"`
		Mode    string   `json:"mode" example:"normal" doc:"Mode the route was applied in"`
	}
}

type ModeRequest struct {
	Body struct {
		Mode string `json:"mode" enum:"normal,ringtone,in_call,in_communication" example:"in_call" doc:"Telephony mode"`
	}
}

type ModeResponse struct {
	Body struct {
		Mode string `json:"mode" example:"in_call" doc:"Telephony mode"`
	}
}

// Parameter and volume models
type ParametersData struct {
	DualMic bool `json:"dual_mic" doc:"Dual microphone state"`
	FMOn    bool `json:"fm_on" doc:"Whether FM radio is playing"`
	VGS     bool `json:"vgs" doc:"Bluetooth volume control state"`
}

type ParametersResponse struct {
	Body ParametersData
}

type VolumeRequest struct {
	Body struct {
		Voice     *float64 `json:"voice,omitempty" minimum:"0" maximum:"1" doc:"Voice call volume"`
		FM        *float64 `json:"fm,omitempty" minimum:"0" maximum:"1" doc:"FM radio linear gain"`
		MicMute   *bool    `json:"mic_mute,omitempty" doc:"Mute the microphone"`
		BtscoRate *int     `json:"btsco_rate,omitempty" enum:"8000,16000" doc:"Bluetooth SCO sample rate"`
	}
}

type InputBufferSizeRequest struct {
	SampleRate int `query:"sample_rate" example:"8000" doc:"Sample rate in Hz"`
	Channels   int `query:"channels" example:"1" doc:"Channel count"`
	Format     int `query:"format" default:"2" doc:"ALSA sample format number, 2 is S16_LE"`
}

type InputBufferSizeResponse struct {
	Body struct {
		Bytes int `json:"bytes" example:"320" doc:"Input buffer size in bytes, 0 for unsupported formats"`
	}
}

// Device models
type LayoutData struct {
	Devices map[string]uint32 `json:"devices" doc:"Bit assigned to each device name"`
}

type LayoutResponse struct {
	Body LayoutData
}

type PCMListResponse struct {
	Body struct {
		PCMs  []driver.PCM `json:"pcms" doc:"PCM endpoints reported by the kernel"`
		Count int          `json:"count" example:"4" doc:"Number of endpoints"`
	}
}

// Indicator models
type IndicatorRequest struct {
	Body struct {
		Name    string  `json:"name" example:"green" doc:"LED name (board-specific)"`
		Enabled bool    `json:"enabled" example:"true" doc:"Whether the LED should be on or off"`
		Pattern *string `json:"pattern,omitempty" example:"solid" doc:"Optional LED pattern (solid, blink, heartbeat)"`
	}
}

type IndicatorCapabilitiesResponse struct {
	Body struct {
		Available []string `json:"available" doc:"LED names on this board"`
		Patterns  []string `json:"patterns" doc:"Supported patterns"`
		Call      bool     `json:"call" doc:"Call indicator lit"`
		FM        bool     `json:"fm" doc:"FM indicator lit"`
		Muted     bool     `json:"muted" doc:"Mute indicator lit"`
	}
}
