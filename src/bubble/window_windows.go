//go:build windows

package bubble

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	gdi32                = syscall.NewLazyDLL("gdi32.dll")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procGetMessage       = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procPostMessage      = user32.NewProc("PostMessageW")
	procBeginPaint       = user32.NewProc("BeginPaint")
	procEndPaint         = user32.NewProc("EndPaint")
	procDrawText         = user32.NewProc("DrawTextW")
	procLoadCursor       = user32.NewProc("LoadCursorW")
	procInvalidateRect   = user32.NewProc("InvalidateRect")
	procSetBkMode        = gdi32.NewProc("SetBkMode")
)

const (
	wsPopup         = 0x80000000
	wsBorder        = 0x00800000
	wsExNoActivate  = 0x08000000
	wsExToolWindow  = 0x00000080
	wsExTopmost     = 0x00000008
	wmDestroy       = 0x0002
	wmClose         = 0x0010
	wmPaint         = 0x000F
	wmLButtonDown   = 0x0201
	wmUser          = 0x0400
	wmShowBubble    = wmUser + 1
	wmHideBubble    = wmUser + 2
	swHide          = 0
	swShowNoActive  = 4
	swpNoActivate   = 0x0010
	swpShowWindow   = 0x0040
	hwndTopmost     = ^uintptr(0)
	dtSingleLine    = 0x00000020
	dtEndEllipsis   = 0x00008000
	dtWordBreak     = 0x00000010
	dtNoPrefix      = 0x00000800
	bkTransparent   = 1
	colorWindow     = 5
	idcArrow        = 32512
	bubbleClassName = "DictyyBubbleClass"
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type point struct{ X, Y int32 }

type msg struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type rect struct{ Left, Top, Right, Bottom int32 }

type paintStruct struct {
	Hdc         syscall.Handle
	FErase      int32
	RcPaint     rect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

// winWindow is the single reusable bubble window. The window is created on a
// dedicated locked goroutine that then runs the message loop; all other
// goroutines talk to it through posted messages and the mutex-guarded state.
type winWindow struct {
	mu      sync.Mutex
	content Content
	x, y    int32

	hwnd    syscall.Handle
	onClick func(word string)
}

func newPlatformWindow(onClick func(word string)) (window, error) {
	w := &winWindow{onClick: onClick}
	ready := make(chan error, 1)
	go w.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *winWindow) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := w.registerClass(); err != nil {
		ready <- err
		return
	}

	className, _ := syscall.UTF16PtrFromString(bubbleClassName)
	title, _ := syscall.UTF16PtrFromString("Dictyy")

	// Created hidden; shown and repositioned per lookup. The no-activate
	// toolwindow styles keep it out of the taskbar and away from focus.
	hwnd, _, _ := procCreateWindowEx.Call(
		wsExNoActivate|wsExToolWindow|wsExTopmost,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		wsPopup|wsBorder,
		0, 0, Width, Height,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("CreateWindowEx failed")
		return
	}
	w.hwnd = syscall.Handle(hwnd)
	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
	log.Printf("Bubble: message loop exited")
}

func (w *winWindow) registerClass() error {
	className, _ := syscall.UTF16PtrFromString(bubbleClassName)
	cursor, _, _ := procLoadCursor.Call(0, idcArrow)

	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   syscall.NewCallback(w.wndProc),
		HCursor:       syscall.Handle(cursor),
		HbrBackground: syscall.Handle(colorWindow + 1),
		LpszClassName: className,
	}
	if atom, _, _ := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return fmt.Errorf("RegisterClassEx failed")
	}
	return nil
}

func (w *winWindow) wndProc(hwnd syscall.Handle, message uint32, wParam, lParam uintptr) uintptr {
	switch message {
	case wmShowBubble:
		w.mu.Lock()
		x, y := w.x, w.y
		w.mu.Unlock()
		procSetWindowPos.Call(
			uintptr(hwnd), hwndTopmost,
			uintptr(x), uintptr(y), Width, Height,
			swpNoActivate|swpShowWindow,
		)
		procInvalidateRect.Call(uintptr(hwnd), 0, 1)
		procUpdateWindow.Call(uintptr(hwnd))
		return 0

	case wmHideBubble:
		procShowWindow.Call(uintptr(hwnd), swHide)
		return 0

	case wmPaint:
		w.paint(hwnd)
		return 0

	case wmLButtonDown:
		w.mu.Lock()
		word := w.content.Word
		w.mu.Unlock()
		procShowWindow.Call(uintptr(hwnd), swHide)
		if w.onClick != nil && word != "" {
			go w.onClick(word)
		}
		return 0

	case wmClose:
		procDestroyWindow.Call(uintptr(hwnd))
		return 0

	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}

	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(message), wParam, lParam)
	return ret
}

func (w *winWindow) paint(hwnd syscall.Handle) {
	w.mu.Lock()
	header := w.content.header()
	body := w.content.body()
	w.mu.Unlock()

	var ps paintStruct
	hdc, _, _ := procBeginPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
	procSetBkMode.Call(hdc, bkTransparent)

	headerRect := rect{Left: 10, Top: 8, Right: Width - 10, Bottom: 30}
	headerPtr, _ := syscall.UTF16PtrFromString(header)
	procDrawText.Call(
		hdc,
		uintptr(unsafe.Pointer(headerPtr)),
		uintptr(^uint32(0)),
		uintptr(unsafe.Pointer(&headerRect)),
		dtSingleLine|dtEndEllipsis|dtNoPrefix,
	)

	bodyRect := rect{Left: 10, Top: 34, Right: Width - 10, Bottom: Height - 8}
	bodyPtr, _ := syscall.UTF16PtrFromString(body)
	procDrawText.Call(
		hdc,
		uintptr(unsafe.Pointer(bodyPtr)),
		uintptr(^uint32(0)),
		uintptr(unsafe.Pointer(&bodyRect)),
		dtWordBreak|dtNoPrefix,
	)

	procEndPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
}

func (w *winWindow) show(c Content, x, y int) {
	w.mu.Lock()
	w.content = c
	w.x, w.y = int32(x), int32(y)
	hwnd := w.hwnd
	w.mu.Unlock()
	procPostMessage.Call(uintptr(hwnd), wmShowBubble, 0, 0)
}

func (w *winWindow) hide() {
	w.mu.Lock()
	hwnd := w.hwnd
	w.mu.Unlock()
	procPostMessage.Call(uintptr(hwnd), wmHideBubble, 0, 0)
}

func (w *winWindow) close() {
	w.mu.Lock()
	hwnd := w.hwnd
	w.mu.Unlock()
	procPostMessage.Call(uintptr(hwnd), wmClose, 0, 0)
}
