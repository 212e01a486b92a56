//go:build linux

package alsa

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Config is the hardware configuration requested on Open.
type Config struct {
	Format   int
	Channels int
	Rate     int
	// BufferBytes, when non-zero, caps the ring buffer size.
	BufferBytes int
}

// PCM is an open, prepared PCM node.
type PCM struct {
	fd       int
	Card     int
	Device   int
	Stream   int
	Path     string
	Config   Config
	started  bool
	released bool
}

// FormatWidth returns the bytes per sample of format, or 0 if unknown.
func FormatWidth(format int) int {
	switch format {
	case FormatS8, FormatU8, FormatMuLaw, FormatALaw:
		return 1
	case FormatS16LE, FormatS16BE, FormatU16LE, FormatU16BE:
		return 2
	case FormatS24LE, FormatS24BE, FormatU24LE, FormatU24BE,
		FormatS32LE, FormatS32BE, FormatU32LE, FormatU32BE, FormatFloatLE, FormatFloatBE:
		return 4
	case FormatFloat64LE, FormatFloat64BE:
		return 8
	default:
		return 0
	}
}

// Open opens the PCM node and installs cfg. It fails if the hardware cannot
// satisfy the format, channel count or rate.
func Open(card, device, stream int, cfg Config) (*PCM, error) {
	path := pcmPath(card, device, stream)
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set blocking %s: %w", path, err)
	}

	hwparams := sndPCMHwParams{}
	hwparams.init()
	hwparams.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)
	hwparams.setMask(sndrvPCMHwParamFormat, uint32(cfg.Format))
	hwparams.setInterval(sndrvPCMHwParamChannels, uint32(cfg.Channels))
	hwparams.setInterval(sndrvPCMHwParamRate, uint32(cfg.Rate))
	if width := FormatWidth(cfg.Format); cfg.BufferBytes > 0 && width > 0 && cfg.Channels > 0 {
		idx := sndrvPCMHwParamBufferSize - sndrvPCMHwParamFirstInterval
		hwparams.intervals[idx].maxVal = uint32(cfg.BufferBytes / (width * cfg.Channels))
	}

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwParams, unsafe.Pointer(&hwparams)); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("hw_params %s (%s %dch %dHz): %w",
			path, FormatName(cfg.Format), cfg.Channels, cfg.Rate, err)
	}
	if err := ioctl(uintptr(fd), sndrvPCMIoctlPrepare, nil); err != nil {
		_ = ioctl(uintptr(fd), sndrvPCMIoctlHwFree, nil)
		syscall.Close(fd)
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}

	return &PCM{
		fd:     fd,
		Card:   card,
		Device: device,
		Stream: stream,
		Path:   path,
		Config: cfg,
	}, nil
}

// Start triggers the stream. Used for hostless links that never see read or
// write calls.
func (p *PCM) Start() error {
	if p.released {
		return fmt.Errorf("start %s: closed", p.Path)
	}
	if err := ioctl(uintptr(p.fd), sndrvPCMIoctlStart, nil); err != nil {
		return fmt.Errorf("start %s: %w", p.Path, err)
	}
	p.started = true
	return nil
}

// Close stops the stream if running and releases the node.
func (p *PCM) Close() error {
	if p.released {
		return nil
	}
	p.released = true
	if p.started {
		_ = ioctl(uintptr(p.fd), sndrvPCMIoctlDrop, nil)
	}
	_ = ioctl(uintptr(p.fd), sndrvPCMIoctlHwFree, nil)
	if err := syscall.Close(p.fd); err != nil {
		return fmt.Errorf("close %s: %w", p.Path, err)
	}
	return nil
}
