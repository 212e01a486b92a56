//go:build linux

package alsa

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// ListDevices returns every ALSA PCM endpoint, playback and capture, on every card.
func ListDevices() ([]Device, error) {
	var devices []Device

	for cardNum := 0; ; cardNum++ {
		ctlPath := fmt.Sprintf("/dev/snd/controlC%d", cardNum)
		ctlFd, err := syscall.Open(ctlPath, syscall.O_RDONLY, 0)
		if err != nil {
			if os.IsNotExist(err) || err == syscall.ENOENT {
				break // No more cards
			}
			continue
		}

		cardInfo := sndCtlCardInfo{}
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&cardInfo)); err != nil {
			syscall.Close(ctlFd)
			continue
		}

		deviceNum := int32(-1)
		for {
			if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&deviceNum)); err != nil {
				break
			}
			if deviceNum < 0 {
				break
			}

			for _, stream := range []int{StreamPlayback, StreamCapture} {
				pcmInfo := sndPCMInfo{
					device:    uint32(deviceNum),
					subdevice: 0,
					stream:    int32(stream),
				}
				if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcmInfo)); err != nil {
					continue // direction not supported
				}

				device := Device{
					CardNumber:   cardNum,
					CardID:       cstr(cardInfo.id[:]),
					CardName:     cstr(cardInfo.longname[:]),
					DeviceNumber: int(deviceNum),
					DeviceName:   cstr(pcmInfo.name[:]),
					Stream:       stream,
					Type:         StreamName(stream),
					ALSADevice:   FormatALSADevice(cardNum, int(deviceNum)),
				}

				if caps, err := queryCapabilities(cardNum, int(deviceNum), stream); err == nil {
					device.SupportedRates = caps.rates
					device.MinChannels = caps.minChannels
					device.MaxChannels = caps.maxChannels
					device.SupportedFormats = caps.formats
					device.MinBufferSize = caps.minBufferSize
					device.MaxBufferSize = caps.maxBufferSize
					device.MinPeriodSize = caps.minPeriodSize
					device.MaxPeriodSize = caps.maxPeriodSize
				}

				devices = append(devices, device)
			}
		}

		syscall.Close(ctlFd)
	}

	return devices, nil
}

// CardExists reports whether the control node for card is present.
func CardExists(card int) bool {
	_, err := os.Stat(fmt.Sprintf("/dev/snd/controlC%d", card))
	return err == nil
}

type capabilities struct {
	rates         []int
	minChannels   int
	maxChannels   int
	formats       []string
	minBufferSize int
	maxBufferSize int
	minPeriodSize int
	maxPeriodSize int
}

func queryCapabilities(card, device, stream int) (*capabilities, error) {
	fd, err := syscall.Open(pcmPath(card, device, stream), syscall.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	defer syscall.Close(fd)

	hwparams := sndPCMHwParams{}
	hwparams.init()
	hwparams.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwRefine, unsafe.Pointer(&hwparams)); err != nil {
		return nil, err
	}

	caps := &capabilities{}

	minCh, maxCh := hwparams.getInterval(sndrvPCMHwParamChannels)
	caps.minChannels = int(minCh)
	caps.maxChannels = int(maxCh)

	minRate, maxRate := hwparams.getInterval(sndrvPCMHwParamRate)
	for _, rate := range CommonSampleRates {
		if uint32(rate) >= minRate && uint32(rate) <= maxRate {
			caps.rates = append(caps.rates, rate)
		}
	}

	for _, format := range CommonFormats {
		if hwparams.checkMask(sndrvPCMHwParamFormat, uint32(format)) {
			caps.formats = append(caps.formats, FormatName(format))
		}
	}

	minBuf, maxBuf := hwparams.getInterval(sndrvPCMHwParamBufferSize)
	caps.minBufferSize = int(minBuf)
	caps.maxBufferSize = int(maxBuf)

	minPer, maxPer := hwparams.getInterval(sndrvPCMHwParamPeriodSize)
	caps.minPeriodSize = int(minPer)
	caps.maxPeriodSize = int(maxPer)

	return caps, nil
}
