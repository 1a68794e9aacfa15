//go:build !windows

package halfkay

import (
	"github.com/google/gousb"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

// unixHandle claims the HalfKay interface via gousb and writes reports to
// the interrupt OUT endpoint directly. On these hosts the native write call
// blocks acceptably and a single attempt suffices (§4.2) — no retry/budget
// bookkeeping is needed here.
type unixHandle struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	done  func()
	epOut *gousb.OutEndpoint
}

func openPlatform(path string) (platformHandle, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(teensy41.VID) &&
			desc.Product == gousb.ID(teensy41.PIDHalfKay) &&
			busAddrPath(desc.Bus, desc.Address) == path
	})
	if err != nil {
		ctx.Close()
		return nil, errHID(err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, errNoDevice
	}
	chosen := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	cfg, err := chosen.Config(1)
	if err != nil {
		chosen.Close()
		ctx.Close()
		return nil, errHID(err)
	}
	intf, done, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		chosen.Close()
		ctx.Close()
		return nil, errHID(err)
	}
	epOut, err := intf.OutEndpoint(1)
	if err != nil {
		done()
		cfg.Close()
		chosen.Close()
		ctx.Close()
		return nil, errHID(err)
	}

	return &unixHandle{ctx: ctx, dev: chosen, cfg: cfg, done: done, epOut: epOut}, nil
}

func (h *unixHandle) writeReport(report []byte, blockIndex int) error {
	n, err := h.epOut.Write(report)
	if err != nil {
		return errHID(err)
	}
	if n != len(report) {
		return errShortWrite(n, len(report))
	}
	return nil
}

func (h *unixHandle) close() error {
	h.done()
	h.cfg.Close()
	h.dev.Close()
	h.ctx.Close()
	return nil
}
