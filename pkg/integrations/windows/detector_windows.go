//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	winapi "golang.org/x/sys/windows"
)

var (
	user32               = winapi.NewLazySystemDLL("user32.dll")
	kernel32             = winapi.NewLazySystemDLL("kernel32.dll")
	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// IsAvailable always holds on Windows
func (d *Detector) IsAvailable() bool {
	return true
}

func foreground() (title, image string, err error) {
	hwnd := winapi.GetForegroundWindow()
	if hwnd == 0 {
		return "", "", fmt.Errorf("no foreground window")
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	title = winapi.UTF16ToString(buf[:n])

	var pid uint32
	if _, err := winapi.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return title, "", fmt.Errorf("failed to get window process: %w", err)
	}

	proc, err := winapi.OpenProcess(winapi.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		// Elevated processes refuse the query; the title still names the window.
		return title, "", nil
	}
	defer winapi.CloseHandle(proc)

	size := uint32(winapi.MAX_LONG_PATH)
	path := make([]uint16, size)
	if err := winapi.QueryFullProcessImageName(proc, 0, &path[0], &size); err != nil {
		return title, "", nil
	}
	return title, winapi.UTF16ToString(path[:size]), nil
}

func idleSeconds() (int64, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	if ok, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info))); ok == 0 {
		return 0, fmt.Errorf("GetLastInputInfo failed: %w", err)
	}

	now, _, _ := procGetTickCount.Call()
	return int64(uint32(now)-info.dwTime) / 1000, nil
}
