package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/indicator"
	"github.com/smazurov/audiohal/internal/routing"
	"github.com/smazurov/audiohal/internal/session"
)

// Sequencer backends.
const (
	SequencerMemory = "memory"
	SequencerFile   = "file"
)

// SequencerConfig selects where the use case registry keeps its state.
type SequencerConfig struct {
	Backend   string `toml:"backend"`
	StatePath string `toml:"state_path"`
}

// File holds the hardware tables of audiohal.toml. Flat server and logging
// options are read separately by LoadConfig.
type File struct {
	Devices    device.Layout
	Session    session.Defaults
	Driver     driver.Config
	Sequencer  SequencerConfig
	Indicators indicator.Config
}

// DefaultFile returns the configuration used when no file exists.
func DefaultFile() File {
	return File{
		Devices:   device.DefaultLayout(),
		Session:   session.DefaultDefaults(),
		Driver:    driver.DefaultConfig(),
		Sequencer: SequencerConfig{Backend: SequencerMemory},
	}
}

// LoadFile reads the [devices], [session], [driver], [sequencer] and
// [indicators] tables from path over the defaults. A missing file is not an
// error.
func LoadFile(path string) (File, error) {
	f := DefaultFile()
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := struct {
		Devices    *device.Layout    `toml:"devices"`
		Session    map[string]any    `toml:"session"`
		Driver     *driver.Config    `toml:"driver"`
		Sequencer  *SequencerConfig  `toml:"sequencer"`
		Indicators *indicator.Config `toml:"indicators"`
	}{
		Devices:    &f.Devices,
		Driver:     &f.Driver,
		Sequencer:  &f.Sequencer,
		Indicators: &f.Indicators,
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := applyTable(&f.Session, raw.Session); err != nil {
		return f, fmt.Errorf("%s [session]: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Validate rejects layouts with overlapping bits and unusable session
// parameters.
func (f File) Validate() error {
	if err := f.Devices.Validate(); err != nil {
		return err
	}
	s := f.Session
	if s.SampleRate <= 0 || s.VoiceSampleRate <= 0 || s.RecordRate <= 0 {
		return errors.New("session sample rates must be positive")
	}
	if s.Channels <= 0 || s.VoiceChannels <= 0 {
		return errors.New("session channel counts must be positive")
	}
	switch f.Sequencer.Backend {
	case SequencerMemory:
	case SequencerFile:
		if f.Sequencer.StatePath == "" {
			return errors.New("sequencer backend \"file\" needs state_path")
		}
	default:
		return fmt.Errorf("unknown sequencer backend %q", f.Sequencer.Backend)
	}
	return nil
}

// applyTable copies the keys of a decoded TOML table onto the fields of dst
// carrying the matching toml tag.
func applyTable(dst any, table map[string]any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	var errs []error
	for i := range v.NumField() {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		value, ok := table[tag]
		if !ok || tag == "" {
			continue
		}
		if err := setFieldValue(v.Field(i), value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

// Accessories is the content of the watched accessory file.
type Accessories struct {
	Mode    string `toml:"mode"`
	DualMic bool   `toml:"dual_mic"`
	ANC     bool   `toml:"anc"`
	TTYMode string `toml:"tty_mode"`
	BTVGS   bool   `toml:"bt_vgs"`
}

// LoadAccessories parses an accessory file. It is the loader handed to
// NewConfigWatcher.
func LoadAccessories(path string) (Accessories, error) {
	var a Accessories
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := device.ParseMode(a.Mode); err != nil {
		return a, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// AccessoryTarget is what an accessory file drives.
type AccessoryTarget interface {
	Mode() device.Mode
	SetMode(device.Mode)
	Accessories() routing.Accessories
	SetDualMic(bool) error
	SetANC(bool) error
	SetTTYMode(device.TTYMode) error
	SetBluetoothVGS(bool) error
}

// Apply pushes the values that differ from the target's current state. The
// mode goes first so a TTY change lands in the right mode.
func (a Accessories) Apply(t AccessoryTarget) error {
	mode, err := device.ParseMode(a.Mode)
	if err != nil {
		return err
	}
	if mode != t.Mode() {
		t.SetMode(mode)
	}

	cur := t.Accessories()
	var errs []error
	if a.DualMic != cur.DualMic {
		errs = append(errs, t.SetDualMic(a.DualMic))
	}
	if a.ANC != cur.ANC {
		errs = append(errs, t.SetANC(a.ANC))
	}
	if tty := device.ParseTTYMode(a.TTYMode); tty != cur.TTY {
		errs = append(errs, t.SetTTYMode(tty))
	}
	if a.BTVGS != cur.BluetoothVGS {
		errs = append(errs, t.SetBluetoothVGS(a.BTVGS))
	}
	return errors.Join(errs...)
}
