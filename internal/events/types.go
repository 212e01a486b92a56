package events

// Event type constants for kelindar/event.
const (
	TypeRouteApplied uint32 = iota + 1
	TypeSessionOpened
	TypeSessionClosed
	TypeCallStateChanged
	TypeFMStateChanged
	TypeModeChanged
	TypeAccessoryChanged
	TypeSequencerFailed
	TypeTransportFailed
	TypeLogEntry
	TypeCardChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// RouteAppliedEvent is published after the transport accepted a route.
type RouteAppliedEvent struct {
	SessionID uint64   `json:"session_id" example:"3" doc:"Session that was routed"`
	Category  string   `json:"category" example:"playback" doc:"Session category"`
	UseCase   string   `json:"use_case" example:"HiFi" doc:"Use case of the routed session"`
	Devices   uint32   `json:"devices" example:"2" doc:"Device mask after accessory transforms"`
	Names     []string `json:"names" doc:"Device names in the mask"`
	Mode      string   `json:"mode" example:"normal" doc:"Telephony mode"`
	TTY       string   `json:"tty" example:"off" doc:"TTY mode"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RouteAppliedEvent.
func (e RouteAppliedEvent) Type() uint32 { return TypeRouteApplied }

// SessionOpenedEvent is published when a session enters the registry.
type SessionOpenedEvent struct {
	SessionID  uint64 `json:"session_id" example:"3" doc:"Session identifier"`
	Category   string `json:"category" example:"voice" doc:"Session category"`
	UseCase    string `json:"use_case" example:"Voice Call" doc:"Use case enabled for the session"`
	Devices    uint32 `json:"devices" example:"262145" doc:"Device mask"`
	SampleRate int    `json:"sample_rate" example:"8000" doc:"Sample rate in Hz"`
	Channels   int    `json:"channels" example:"1" doc:"Channel count"`
	BufferSize int    `json:"buffer_size" example:"4096" doc:"Buffer size in bytes"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionOpenedEvent.
func (e SessionOpenedEvent) Type() uint32 { return TypeSessionOpened }

// SessionClosedEvent is published when a session leaves the registry.
type SessionClosedEvent struct {
	SessionID uint64 `json:"session_id" example:"3" doc:"Session identifier"`
	Category  string `json:"category" example:"fm" doc:"Session category"`
	UseCase   string `json:"use_case" example:"Digital Radio" doc:"Use case disabled for the session"`
	Reason    string `json:"reason" example:"fm_stopped" doc:"Why the session was closed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionClosedEvent.
func (e SessionClosedEvent) Type() uint32 { return TypeSessionClosed }

// CallStateChangedEvent reports voice call start and end.
type CallStateChangedEvent struct {
	Active    bool   `json:"active" doc:"Whether a voice call is up"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CallStateChangedEvent.
func (e CallStateChangedEvent) Type() uint32 { return TypeCallStateChanged }

// FMStateChangedEvent reports FM radio start and stop.
type FMStateChangedEvent struct {
	Active    bool   `json:"active" doc:"Whether FM radio is playing"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FMStateChangedEvent.
func (e FMStateChangedEvent) Type() uint32 { return TypeFMStateChanged }

// ModeChangedEvent reports a telephony mode change.
type ModeChangedEvent struct {
	Mode      string `json:"mode" example:"in_call" doc:"New mode"`
	Previous  string `json:"previous" example:"normal" doc:"Previous mode"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ModeChangedEvent.
func (e ModeChangedEvent) Type() uint32 { return TypeModeChanged }

// AccessoryChangedEvent reports a toggled accessory flag.
type AccessoryChangedEvent struct {
	Name      string `json:"name" example:"dual_mic" doc:"Accessory name"`
	Value     string `json:"value" example:"true" doc:"New value"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for AccessoryChangedEvent.
func (e AccessoryChangedEvent) Type() uint32 { return TypeAccessoryChanged }

// SequencerFailedEvent reports a use case registry call that failed. Routing
// continued without it.
type SequencerFailedEvent struct {
	Operation string `json:"operation" example:"enable" doc:"Registry operation"`
	UseCase   string `json:"use_case" example:"Play Music" doc:"Use case involved"`
	Error     string `json:"error" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SequencerFailedEvent.
func (e SequencerFailedEvent) Type() uint32 { return TypeSequencerFailed }

// TransportFailedEvent reports a driver transport error.
type TransportFailedEvent struct {
	Operation string `json:"operation" example:"open" doc:"Transport operation"`
	SessionID uint64 `json:"session_id" example:"3" doc:"Session involved"`
	Error     string `json:"error" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TransportFailedEvent.
func (e TransportFailedEvent) Type() uint32 { return TypeTransportFailed }

// LogEntryEvent carries one log record to log stream subscribers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"routing" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	SessionID  uint64         `json:"session_id,omitempty" example:"3" doc:"Session the record concerns"`
	Category   string         `json:"category,omitempty" example:"playback" doc:"Session category"`
	UseCase    string         `json:"use_case,omitempty" example:"HiFi" doc:"Use case in effect"`
	Devices    string         `json:"devices,omitempty" example:"speaker" doc:"Routed devices"`
	ErrorCode  string         `json:"error_code,omitempty" example:"DEVICE_UNAVAILABLE" doc:"Code of the logged error"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// CardChangedEvent reports a sound card or PCM node appearing or vanishing.
type CardChangedEvent struct {
	Action    string `json:"action" example:"add" doc:"Kernel action: add, remove or change"`
	Card      int    `json:"card" example:"1" doc:"ALSA card index"`
	Node      string `json:"node,omitempty" example:"pcmC1D0p" doc:"PCM node, empty for the card itself"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CardChangedEvent.
func (e CardChangedEvent) Type() uint32 { return TypeCardChanged }
