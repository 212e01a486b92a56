package driver

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// controlWriter sets a mixer element on a card.
type controlWriter interface {
	Set(card int, name, value string) error
}

// amixer shells out to alsa-utils. Mixer element writes need the control
// ioctl value union, which amixer already knows how to pack for every
// element type.
type amixer struct {
	path    string
	timeout time.Duration
}

func newAmixer() *amixer {
	return &amixer{path: "amixer", timeout: 2 * time.Second}
}

func (a *amixer) Set(card int, name, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.path, "-q", "-c", strconv.Itoa(card), "cset", "name="+name, value)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("amixer cset %q=%s: %w: %s", name, value, err, strings.TrimSpace(string(out)))
	}
	return nil
}
