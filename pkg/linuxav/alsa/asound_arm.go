//go:build linux && arm

package alsa

import "unsafe"

var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [604]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
)

// 604 byte hw_params on 32-bit ARM.
const (
	sndrvPCMIoctlHwRefine = 0xc25c4110
	sndrvPCMIoctlHwParams = 0xc25c4111
	sndrvPCMIoctlHwFree   = 0x00004112
)

// sndPCMHwParams differs from 64-bit only in fifoSize.
type sndPCMHwParams struct {
	flags     uint32
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask
	mres      [5]sndMask
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval
	ires      [9]sndInterval
	rmask     uint32
	cmask     uint32
	info      uint32
	msbits    uint32
	rateNum   uint32
	rateDen   uint32
	fifoSize  uint32
	reserved  [64]byte
}
