package indicator

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Config maps indicator roles to sysfs LED names. Empty roles fall back to
// the board defaults.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Call    string `toml:"call"`
	FM      string `toml:"fm"`
	Mute    string `toml:"mute"`
	// SysfsPath overrides /sys/class/leds.
	SysfsPath string `toml:"sysfs_path"`
}

// Role names used with Controller.Set.
const (
	RoleCall = "call"
	RoleFM   = "fm"
	RoleMute = "mute"
)

// New returns a sysfs controller for the configured or detected LEDs, or a
// no-op controller when there are none.
func New(cfg Config, logger *slog.Logger) Controller {
	if !cfg.Enabled {
		logger.Debug("Indicators disabled, using no-op controller")
		return newNoop(logger)
	}

	leds := boardLEDs(detectBoard(), logger)
	for role, name := range map[string]string{RoleCall: cfg.Call, RoleFM: cfg.FM, RoleMute: cfg.Mute} {
		if name != "" {
			leds[role] = name
		}
	}
	if len(leds) == 0 {
		logger.Info("No indicator LEDs configured, using no-op controller")
		return newNoop(logger)
	}

	base := cfg.SysfsPath
	if base == "" {
		base = sysfsLEDPath
	}
	return newSysfs(base, leds)
}

// boardLEDs returns the default role mapping for a device tree model.
func boardLEDs(model string, logger *slog.Logger) map[string]string {
	switch {
	case strings.Contains(model, "NanoPC-T6"):
		logger.Info("Detected NanoPC-T6, using sysfs indicators", "board_model", model)
		return map[string]string{RoleCall: "usr_led", RoleFM: "sys_led"}
	case strings.Contains(model, "Orange Pi"):
		logger.Info("Detected Orange Pi, using sysfs indicators", "board_model", model)
		return map[string]string{RoleCall: "green_led", RoleFM: "blue_led"}
	case strings.Contains(model, "Raspberry Pi"):
		logger.Info("Detected Raspberry Pi, using sysfs indicators", "board_model", model)
		return map[string]string{RoleCall: "ACT"}
	default:
		return map[string]string{}
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}
