package halfkay

import (
	"strconv"
	"time"

	"github.com/google/gousb"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

// Summary is the minimal enumeration record for a HalfKay device: its
// vendor/product id and the opaque path used to reopen it.
type Summary struct {
	VID  uint16
	PID  uint16
	Path string
}

// platformHandle is the OS-specific half of a Device: the thing that
// actually performs a blocking/overlapped report write. Implemented once
// per platform in device_unix.go and device_windows.go.
type platformHandle interface {
	writeReport(report []byte, blockIndex int) error
	close() error
}

// Device is a handle to an open HalfKay HID device, valid until Close.
type Device struct {
	Path string
	VID  uint16
	PID  uint16

	handle platformHandle
}

// ListDevices enumerates every HID device presenting the recognized
// vendor and HalfKay product id. Enumeration goes through gousb/libusb on
// every platform — only the report write path is platform-specific (§4.2).
func ListDevices() ([]Summary, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var summaries []Summary
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(teensy41.VID) && desc.Product == gousb.ID(teensy41.PIDHalfKay)
	})
	for _, d := range devs {
		summaries = append(summaries, Summary{
			VID:  teensy41.VID,
			PID:  teensy41.PIDHalfKay,
			Path: devicePath(d),
		})
		d.Close()
	}
	if err != nil {
		return summaries, errHID(err)
	}
	return summaries, nil
}

// ListPaths is a convenience wrapper over ListDevices used by discovery and
// by the bootloader-appearance poll (§4.6), which only needs the path set.
func ListPaths() ([]string, error) {
	devs, err := ListDevices()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(devs))
	for i, d := range devs {
		paths[i] = d.Path
	}
	return paths, nil
}

func devicePath(d *gousb.Device) string {
	return busAddrPath(d.Desc.Bus, d.Desc.Address)
}

func busAddrPath(bus, addr int) string {
	return "usb:" + strconv.Itoa(bus) + "." + strconv.Itoa(addr)
}

// Open connects to the device at path, which must be one most recently
// returned by ListDevices/ListPaths.
func Open(path string) (*Device, error) {
	h, err := openPlatform(path)
	if err != nil {
		return nil, err
	}
	return &Device{Path: path, VID: teensy41.VID, PID: teensy41.PIDHalfKay, handle: h}, nil
}

// OpenWaiting retries Open until it succeeds or timeout elapses (timeout<=0
// means retry forever), polling every 250ms — used when the caller knows a
// device should appear shortly (e.g. immediately after a soft reboot).
func OpenWaiting(path string, timeout time.Duration) (*Device, error) {
	start := time.Now()
	for {
		dev, err := Open(path)
		if err == nil {
			return dev, nil
		}
		if timeout > 0 && time.Since(start) >= timeout {
			return nil, err
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// WriteBlock transmits exactly one firmware block to blockAddr.
// blockIndex selects the Windows write-timeout budget (§4.2).
func (d *Device) WriteBlock(blockAddr uint32, data []byte, blockIndex int) error {
	report := BuildBlockReport(blockAddr, data)
	return d.handle.writeReport(report, blockIndex)
}

// Boot transmits the boot report. The device may disconnect instantly once
// it reboots into application firmware; callers should swallow the error.
func (d *Device) Boot() error {
	report := BuildBootReport()
	return d.handle.writeReport(report, teensy41.NumBlocks) // beyond the bulk-erase window
}

// Close releases the underlying OS handle.
func (d *Device) Close() error {
	return d.handle.close()
}
