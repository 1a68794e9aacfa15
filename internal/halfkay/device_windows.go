//go:build windows

package halfkay

import (
	"time"

	"golang.org/x/sys/windows"
)

// windowsHandle performs the mandatory overlapped write: the HID class
// driver's blocking write characteristics on Windows force an asynchronous
// WriteFile plus a bounded wait, with cancel-then-await-completion on
// timeout (§4.2, §5 Cancellation).
type windowsHandle struct {
	handle windows.Handle
	event  windows.Handle
}

func openPlatform(path string) (platformHandle, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, errHID(err)
	}

	event, err := windows.CreateEvent(nil, 1 /* manual reset */, 1 /* initially signaled */, nil)
	if err != nil {
		return nil, errWin32("CreateEvent", uint32(errnoOf(err)))
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		windows.CloseHandle(event)
		if err == windows.ERROR_FILE_NOT_FOUND {
			return nil, errNoDevice
		}
		return nil, errWin32("CreateFile", uint32(errnoOf(err)))
	}

	return &windowsHandle{handle: handle, event: event}, nil
}

// budgetFor returns the total write-timeout budget for a report, per §4.2:
// the first five blocks trigger a bulk erase on the device.
func budgetFor(blockIndex int) time.Duration {
	if blockIndex <= 4 {
		return 45_000 * time.Millisecond
	}
	return 500 * time.Millisecond
}

func (h *windowsHandle) writeReport(report []byte, blockIndex int) error {
	budget := budgetFor(blockIndex)
	deadline := time.Now().Add(budget)

	var lastErr error = errWin32("write budget exhausted with no attempt completed", 0)
	for {
		n, err := h.writeOnce(report, time.Until(deadline))
		if err == nil {
			if n != len(report) {
				return errShortWrite(n, len(report))
			}
			return nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			// Open question (§9): the last recorded error is returned, not
			// the first — preserved intentionally.
			return lastErr
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (h *windowsHandle) writeOnce(report []byte, timeout time.Duration) (int, error) {
	windows.ResetEvent(h.event)

	var overlapped windows.Overlapped
	overlapped.HEvent = h.event

	var written uint32
	err := windows.WriteFile(h.handle, report, &written, &overlapped)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return 0, errWin32("WriteFile", uint32(errnoOf(err)))
	}

	if timeout < 0 {
		timeout = 0
	}
	ms := uint32(timeout / time.Millisecond)
	waitResult, err := windows.WaitForSingleObject(h.event, ms)
	if err != nil {
		return 0, errWin32("WaitForSingleObject", uint32(errnoOf(err)))
	}

	if waitResult == uint32(windows.WAIT_TIMEOUT) {
		// Critical: the kernel may still touch the OVERLAPPED structure
		// until the cancelled operation actually completes. Cancel, then
		// block for that completion before returning.
		windows.CancelIoEx(h.handle, &overlapped)
		var cancelled uint32
		_ = windows.GetOverlappedResult(h.handle, &overlapped, &cancelled, true)
		return 0, errWin32("write timed out", uint32(windows.WAIT_TIMEOUT))
	}

	var n uint32
	if err := windows.GetOverlappedResult(h.handle, &overlapped, &n, false); err != nil {
		return 0, errWin32("GetOverlappedResult", uint32(errnoOf(err)))
	}
	if n == 0 {
		return 0, errShortWrite(0, len(report))
	}
	return int(n), nil
}

func (h *windowsHandle) close() error {
	windows.CloseHandle(h.handle)
	windows.CloseHandle(h.event)
	return nil
}

func errnoOf(err error) uintptr {
	if errno, ok := err.(windows.Errno); ok {
		return uintptr(errno)
	}
	return 0
}
