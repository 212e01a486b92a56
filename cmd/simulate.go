package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/audiohal/internal/config"
	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/hal"
	"github.com/smazurov/audiohal/internal/logging"
	"github.com/smazurov/audiohal/internal/ucm"
	"github.com/spf13/cobra"
)

// Scenario is a list of router calls replayed against the null transport.
type Scenario struct {
	Steps []Step `toml:"step"`
}

// Step is one scenario entry. Fields are applied in declaration order and
// empty fields are skipped.
type Step struct {
	Mode    string    `toml:"mode"`
	DualMic *bool     `toml:"dual_mic"`
	ANC     *bool     `toml:"anc"`
	TTYMode string    `toml:"tty_mode"`
	BTVGS   *bool     `toml:"bt_vgs"`
	Route   []string  `toml:"route"`
	Open    *OpenStep `toml:"open"`
	Close   string    `toml:"close"` // Session category
}

// OpenStep opens a playback or capture session.
type OpenStep struct {
	Direction  string `toml:"direction"`
	Device     string `toml:"device"`
	LowPower   bool   `toml:"low_power"`
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (Scenario, error) {
	var s Scenario
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(s.Steps) == 0 {
		return s, fmt.Errorf("scenario %s has no [[step]] entries", path)
	}
	return s, nil
}

// RunScenario applies every step to hw and prints the registry after each.
// It stops at the first failing step.
func RunScenario(hw *hal.Hardware, s Scenario, w io.Writer) error {
	for i, step := range s.Steps {
		if err := applyStep(hw, step); err != nil {
			fmt.Fprintf(w, "step %d: %s\n  error: %v\n", i+1, describeStep(step), err)
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "step %d: %s\n", i+1, describeStep(step))
		printSnapshot(w, hw)
	}
	return nil
}

func applyStep(hw *hal.Hardware, step Step) error {
	layout := hw.Layout()

	if step.Mode != "" {
		mode, err := device.ParseMode(step.Mode)
		if err != nil {
			return err
		}
		hw.SetMode(mode)
	}
	if step.DualMic != nil {
		if err := hw.SetDualMic(*step.DualMic); err != nil {
			return err
		}
	}
	if step.ANC != nil {
		if err := hw.SetANC(*step.ANC); err != nil {
			return err
		}
	}
	if step.TTYMode != "" {
		if err := hw.SetTTYMode(device.ParseTTYMode(step.TTYMode)); err != nil {
			return err
		}
	}
	if step.BTVGS != nil {
		if err := hw.SetBluetoothVGS(*step.BTVGS); err != nil {
			return err
		}
	}
	if step.Route != nil {
		mask, err := layout.Parse(step.Route)
		if err != nil {
			return err
		}
		if err := hw.RouteDevices(mask); err != nil {
			return err
		}
	}
	if o := step.Open; o != nil {
		mask, err := layout.Parse([]string{o.Device})
		if err != nil {
			return err
		}
		switch o.Direction {
		case "output", "":
			_, err = hw.OpenOutput(mask, o.LowPower)
		case "input":
			_, err = hw.OpenInput(mask, o.SampleRate, o.Channels)
		default:
			err = fmt.Errorf("direction must be output or input, got %q", o.Direction)
		}
		if err != nil {
			return err
		}
	}
	if step.Close != "" {
		for _, sess := range hw.Snapshot().Sessions {
			if sess.Category.String() == step.Close {
				return hw.CloseSession(sess.ID)
			}
		}
		return fmt.Errorf("no open %s session", step.Close)
	}
	return nil
}

func describeStep(step Step) string {
	var parts []string
	if step.Mode != "" {
		parts = append(parts, "mode="+step.Mode)
	}
	if step.DualMic != nil {
		parts = append(parts, fmt.Sprintf("dual_mic=%t", *step.DualMic))
	}
	if step.ANC != nil {
		parts = append(parts, fmt.Sprintf("anc=%t", *step.ANC))
	}
	if step.TTYMode != "" {
		parts = append(parts, "tty_mode="+step.TTYMode)
	}
	if step.BTVGS != nil {
		parts = append(parts, fmt.Sprintf("bt_vgs=%t", *step.BTVGS))
	}
	if step.Route != nil {
		parts = append(parts, "route="+strings.Join(step.Route, "|"))
	}
	if step.Open != nil {
		parts = append(parts, fmt.Sprintf("open=%s:%s", step.Open.Direction, step.Open.Device))
	}
	if step.Close != "" {
		parts = append(parts, "close="+step.Close)
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}

func printSnapshot(w io.Writer, hw *hal.Hardware) {
	snap := hw.Snapshot()
	layout := hw.Layout()

	verb := snap.Verb
	if verb == "" {
		verb = "-"
	}
	fmt.Fprintf(w, "  mode=%s call=%t fm=%t verb=%q modifiers=%q\n",
		snap.State.Mode, snap.State.VoiceCallActive, snap.State.FMActive, verb, snap.Modifiers)
	for _, s := range snap.Sessions {
		fmt.Fprintf(w, "  #%d %-8s %-16q %s\n", s.ID, s.Category, s.UseCase.String(), layout.String(s.Devices))
	}
}

// CreateSimulateCmd creates the simulate command.
func CreateSimulateCmd() *cobra.Command {
	var sequencerState string

	cmd := &cobra.Command{
		Use:   "simulate [scenario.toml]",
		Short: "Replay a routing scenario without hardware",
		Long: `Runs each [[step]] of a scenario file against the null transport and prints ` +
			`the telephony state, use case registry and open sessions after every step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})
			logger := logging.GetLogger("routing")

			// --config is the root persistent flag
			configFile, _ := c.Flags().GetString("config")
			file, err := config.LoadFile(configFile)
			if err != nil {
				return err
			}
			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}

			var seq ucm.Sequencer = ucm.NewMemory()
			if sequencerState != "" {
				store, storeErr := ucm.NewFileStore(sequencerState)
				if storeErr != nil {
					return storeErr
				}
				seq = store
			}

			hw := hal.New(hal.Options{
				Transport: driver.NewNull(logging.GetLogger("driver")),
				Sequencer: seq,
				Layout:    file.Devices,
				Defaults:  file.Session,
				Logger:    logger,
			})
			defer hw.Close()

			c.SilenceUsage = true
			return RunScenario(hw, scenario, c.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sequencerState, "state", "", "Persist the use case registry to this file")

	return cmd
}
