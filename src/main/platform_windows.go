//go:build windows

package main

import (
	"log"
	"syscall"
)

// enableDPIAwareness opts into per-monitor DPI awareness so selection bounds
// arrive in real pixels on scaled displays.
func enableDPIAwareness() {
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret != 0 {
			log.Printf("DPI: SetProcessDpiAwareness returned %d", ret)
		}
		return
	}

	// Vista fallback.
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

// logMonitorConfiguration records the monitor layout once at startup; bubble
// placement bugs are usually multi-monitor bugs.
func logMonitorConfiguration() {
	user32 := syscall.NewLazyDLL("user32.dll")
	getSystemMetrics := user32.NewProc("GetSystemMetrics")

	const (
		smCMonitors       = 80
		smXVirtualScreen  = 76
		smYVirtualScreen  = 77
		smCXVirtualScreen = 78
		smCYVirtualScreen = 79
	)

	monitors, _, _ := getSystemMetrics.Call(uintptr(smCMonitors))
	vx, _, _ := getSystemMetrics.Call(uintptr(smXVirtualScreen))
	vy, _, _ := getSystemMetrics.Call(uintptr(smYVirtualScreen))
	vw, _, _ := getSystemMetrics.Call(uintptr(smCXVirtualScreen))
	vh, _, _ := getSystemMetrics.Call(uintptr(smCYVirtualScreen))

	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		monitors, int32(vx), int32(vy), vw, vh)
}
