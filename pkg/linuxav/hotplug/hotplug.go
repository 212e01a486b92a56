//go:build linux

// Package hotplug reports sound card arrival and removal using netlink.
//
// The kernel broadcasts a uevent for every card and PCM node it creates or
// destroys. Monitor listens on the kobject uevent socket without cgo and
// reduces those messages to CardEvents.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"syscall"
)

// Actions reported by Monitor. Other uevent actions are dropped.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemSound is the uevent subsystem of ALSA devices.
const SubsystemSound = "sound"

// CardEvent describes one sound card or PCM node change.
type CardEvent struct {
	Action string // "add", "remove" or "change"
	Card   int    // ALSA card index
	// Node is the PCM node name such as "pcmC0D1p", empty for the card itself.
	Node string
	KObj string // Kernel object path
}

// IsCard reports whether the event concerns the card rather than one PCM.
func (e CardEvent) IsCard() bool { return e.Node == "" }

// Monitor listens for sound uevents via netlink.
type Monitor struct {
	fd int
}

// netlinkKobjectUEvent is the netlink protocol for kernel object events.
const netlinkKobjectUEvent = 15

// NewMonitor opens the uevent socket.
func NewMonitor() (*Monitor, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &syscall.SockaddrNetlink{
		Family: syscall.AF_NETLINK,
		Groups: 1, // Kernel broadcast group
	}
	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd}, nil
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return syscall.Close(m.fd)
}

// Run sends card events to out until ctx is cancelled or the socket fails.
// out is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, out chan<- CardEvent) error {
	defer close(out)

	buf := make([]byte, 8192)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Read timeout so the context is checked once a second
		tv := syscall.Timeval{Sec: 1}
		if err := syscall.SetsockoptTimeval(m.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			return err
		}

		n, _, err := syscall.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		event, ok := ParseUEvent(buf[:n])
		if !ok {
			continue
		}

		select {
		case out <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent decodes "ACTION@KOBJ\0KEY=VALUE\0..." and keeps only sound card
// and PCM node events.
func ParseUEvent(data []byte) (CardEvent, bool) {
	// libudev rebroadcasts carry a binary header before the uevent
	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0 {
				continue
			}
			rest := data[i+1:]
			idx := bytes.IndexByte(rest, '@')
			end := bytes.IndexByte(rest, 0)
			if idx > 0 && idx < 20 && (end < 0 || idx < end) {
				data = rest
				break
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 {
		return CardEvent{}, false
	}
	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return CardEvent{}, false
	}
	switch action {
	case ActionAdd, ActionRemove, ActionChange:
	default:
		return CardEvent{}, false
	}

	env := make(map[string]string)
	for _, part := range parts[1:] {
		if key, value, found := strings.Cut(string(part), "="); found && key != "" {
			env[key] = value
		}
	}
	if env["SUBSYSTEM"] != SubsystemSound {
		return CardEvent{}, false
	}

	event := CardEvent{Action: action, KObj: kobj}
	if devName := env["DEVNAME"]; devName != "" {
		node := path.Base(devName)
		card, ok := pcmCard(node)
		if !ok {
			return CardEvent{}, false
		}
		event.Card = card
		event.Node = node
		return event, true
	}

	card, ok := cardIndex(path.Base(kobj))
	if !ok {
		return CardEvent{}, false
	}
	event.Card = card
	return event, true
}

// cardIndex parses "card3".
func cardIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "card")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// pcmCard parses the card index out of "pcmC1D0p" or "pcmC1D2c".
func pcmCard(node string) (int, bool) {
	rest, ok := strings.CutPrefix(node, "pcmC")
	if !ok {
		return 0, false
	}
	digits, dev, ok := strings.Cut(rest, "D")
	if !ok || len(dev) < 2 {
		return 0, false
	}
	switch dev[len(dev)-1] {
	case 'p', 'c':
	default:
		return 0, false
	}
	if _, err := strconv.Atoi(dev[:len(dev)-1]); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
