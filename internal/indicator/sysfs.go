package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux LED class interface.
type sysfs struct {
	base string
	leds map[string]string // role -> sysfs name
}

func newSysfs(base string, leds map[string]string) *sysfs {
	return &sysfs{base: base, leds: leds}
}

func (s *sysfs) Set(name string, on bool, pattern string) error {
	sysfsName, ok := s.leds[name]
	if !ok {
		return fmt.Errorf("indicator %q not configured", name)
	}

	ledPath := filepath.Join(s.base, sysfsName)
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return fmt.Errorf("LED %q not found at %s", name, ledPath)
	}

	if pattern != "" {
		trigger := pattern
		switch pattern {
		case "solid":
			trigger = "none"
		case "blink", "heartbeat":
			trigger = "heartbeat"
		}
		if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte(trigger), 0o644); err != nil {
			return fmt.Errorf("failed to set LED trigger: %w", err)
		}
	}

	brightness := "0"
	if on {
		brightness = "1"
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

func (s *sysfs) Available() []string {
	names := make([]string, 0, len(s.leds))
	for name := range s.leds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *sysfs) Patterns() []string {
	return []string{"solid", "blink", "heartbeat"}
}
