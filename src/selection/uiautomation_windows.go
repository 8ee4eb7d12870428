//go:build windows

package selection

import (
	"fmt"
	"log"
	"strings"
	"syscall"
	"time"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

var (
	clsidCUIAutomation        = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation          = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
	iidUIAutomationTextPattrn = ole.NewGUID("{32EBA289-3583-42C9-9C59-3B6D9A1E9B6A}")
)

// UIA_TextPatternId from UIAutomationClient.h
const uiaTextPatternID = 10014

// uiaReader wraps a CUIAutomation instance reused across polls; creating one
// per tick is far too slow for a 200ms cadence.
type uiaReader struct {
	auto *iUIAutomation
}

func newPlatformReader() (Reader, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE means the thread apartment already exists; that is fine.
		oleErr, ok := err.(*ole.OleError)
		if !ok || oleErr.Code() != uintptr(1) {
			return nil, fmt.Errorf("CoInitializeEx failed: %w", err)
		}
	}
	unk, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("create CUIAutomation: %w", err)
	}
	log.Printf("Selection: UI Automation initialized")
	return &uiaReader{auto: (*iUIAutomation)(unsafe.Pointer(unk))}, nil
}

func (r *uiaReader) Close() {
	if r.auto != nil {
		r.auto.Release()
		r.auto = nil
	}
	ole.CoUninitialize()
}

// Poll reads the focused element's selected text and its on-screen bounds.
// Every failure short of a dead automation instance degrades to nil.
func (r *uiaReader) Poll() *Snapshot {
	elem, err := r.auto.getFocusedElement()
	if err != nil || elem == nil {
		return nil
	}
	defer elem.Release()

	pattern, err := elem.textPattern()
	if err != nil || pattern == nil {
		// Focused element has no text pattern (buttons, images, ...).
		return nil
	}
	defer pattern.Release()

	ranges, err := pattern.getSelection()
	if err != nil || ranges == nil {
		return nil
	}
	defer ranges.Release()

	n, err := ranges.length()
	if err != nil || n == 0 {
		return nil
	}

	rng, err := ranges.getElement(0)
	if err != nil || rng == nil {
		return nil
	}
	defer rng.Release()

	text, err := rng.getText(-1)
	if err != nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	snap := &Snapshot{Text: text, ObservedAt: time.Now()}
	if x, y, w, h, ok := rng.boundingRect(); ok {
		snap.X, snap.Y, snap.Width, snap.Height = x, y, w, h
		snap.HasBounds = true
	}
	return snap
}

// --- COM bindings ---------------------------------------------------------
//
// Minimal hand-rolled vtables for the UI Automation client interfaces. Only
// slots up to the last method we call need to be laid out; trailing slots
// are irrelevant to the offsets and omitted.

type iUIAutomation struct {
	ole.IUnknown
}

type iUIAutomationVtbl struct {
	ole.IUnknownVtbl
	CompareElements   uintptr
	CompareRuntimeIds uintptr
	GetRootElement    uintptr
	ElementFromHandle uintptr
	ElementFromPoint  uintptr
	GetFocusedElement uintptr
}

func (v *iUIAutomation) vtbl() *iUIAutomationVtbl {
	return (*iUIAutomationVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iUIAutomation) getFocusedElement() (*iUIAutomationElement, error) {
	var out *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(v.vtbl().GetFocusedElement,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return out, nil
}

type iUIAutomationElement struct {
	ole.IUnknown
}

type iUIAutomationElementVtbl struct {
	ole.IUnknownVtbl
	SetFocus                   uintptr
	GetRuntimeId               uintptr
	FindFirst                  uintptr
	FindAll                    uintptr
	FindFirstBuildCache        uintptr
	FindAllBuildCache          uintptr
	BuildUpdatedCache          uintptr
	GetCurrentPropertyValue    uintptr
	GetCurrentPropertyValueEx  uintptr
	GetCachedPropertyValue     uintptr
	GetCachedPropertyValueEx   uintptr
	GetCurrentPatternAs        uintptr
	GetCachedPatternAs         uintptr
	GetCurrentPattern          uintptr
	GetCachedPattern           uintptr
}

func (v *iUIAutomationElement) vtbl() *iUIAutomationElementVtbl {
	return (*iUIAutomationElementVtbl)(unsafe.Pointer(v.RawVTable))
}

// textPattern fetches the element's TextPattern support, or nil without it.
func (v *iUIAutomationElement) textPattern() (*iUIAutomationTextPattern, error) {
	var unk *ole.IUnknown
	hr, _, _ := syscall.SyscallN(v.vtbl().GetCurrentPattern,
		uintptr(unsafe.Pointer(v)),
		uintptr(uiaTextPatternID),
		uintptr(unsafe.Pointer(&unk)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	if unk == nil {
		return nil, nil
	}
	defer unk.Release()

	var out *iUIAutomationTextPattern
	hr, _, _ = syscall.SyscallN(unk.VTable().QueryInterface,
		uintptr(unsafe.Pointer(unk)),
		uintptr(unsafe.Pointer(iidUIAutomationTextPattrn)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return out, nil
}

type iUIAutomationTextPattern struct {
	ole.IUnknown
}

type iUIAutomationTextPatternVtbl struct {
	ole.IUnknownVtbl
	RangeFromPoint uintptr
	RangeFromChild uintptr
	GetSelection   uintptr
}

func (v *iUIAutomationTextPattern) vtbl() *iUIAutomationTextPatternVtbl {
	return (*iUIAutomationTextPatternVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iUIAutomationTextPattern) getSelection() (*iUIAutomationTextRangeArray, error) {
	var out *iUIAutomationTextRangeArray
	hr, _, _ := syscall.SyscallN(v.vtbl().GetSelection,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return out, nil
}

type iUIAutomationTextRangeArray struct {
	ole.IUnknown
}

type iUIAutomationTextRangeArrayVtbl struct {
	ole.IUnknownVtbl
	GetLength  uintptr
	GetElement uintptr
}

func (v *iUIAutomationTextRangeArray) vtbl() *iUIAutomationTextRangeArrayVtbl {
	return (*iUIAutomationTextRangeArrayVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iUIAutomationTextRangeArray) length() (int, error) {
	var n int32
	hr, _, _ := syscall.SyscallN(v.vtbl().GetLength,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(&n)))
	if hr != 0 {
		return 0, ole.NewError(hr)
	}
	return int(n), nil
}

func (v *iUIAutomationTextRangeArray) getElement(i int) (*iUIAutomationTextRange, error) {
	var out *iUIAutomationTextRange
	hr, _, _ := syscall.SyscallN(v.vtbl().GetElement,
		uintptr(unsafe.Pointer(v)),
		uintptr(int32(i)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return out, nil
}

type iUIAutomationTextRange struct {
	ole.IUnknown
}

type iUIAutomationTextRangeVtbl struct {
	ole.IUnknownVtbl
	Clone                 uintptr
	Compare               uintptr
	CompareEndpoints      uintptr
	ExpandToEnclosingUnit uintptr
	FindAttribute         uintptr
	FindText              uintptr
	GetAttributeValue     uintptr
	GetBoundingRectangles uintptr
	GetEnclosingElement   uintptr
	GetText               uintptr
}

func (v *iUIAutomationTextRange) vtbl() *iUIAutomationTextRangeVtbl {
	return (*iUIAutomationTextRangeVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iUIAutomationTextRange) getText(maxLength int) (string, error) {
	var bstr *uint16
	hr, _, _ := syscall.SyscallN(v.vtbl().GetText,
		uintptr(unsafe.Pointer(v)),
		uintptr(int32(maxLength)),
		uintptr(unsafe.Pointer(&bstr)))
	if hr != 0 {
		return "", ole.NewError(hr)
	}
	if bstr == nil {
		return "", nil
	}
	s := ole.BstrToString(bstr)
	ole.SysFreeString((*int16)(unsafe.Pointer(bstr)))
	return s, nil
}

// boundingRect returns the first rectangle of the range as left/top/width/
// height screen pixels. The COM call yields a SAFEARRAY of doubles laid out
// in groups of four.
func (v *iUIAutomationTextRange) boundingRect() (x, y, w, h int, ok bool) {
	var sa *ole.SafeArray
	hr, _, _ := syscall.SyscallN(v.vtbl().GetBoundingRectangles,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(&sa)))
	if hr != 0 || sa == nil {
		return 0, 0, 0, 0, false
	}
	conv := &ole.SafeArrayConversion{Array: sa}
	defer conv.Release()

	vals := conv.ToValueArray()
	if len(vals) < 4 {
		return 0, 0, 0, 0, false
	}
	doubles := make([]float64, 0, 4)
	for _, raw := range vals[:4] {
		f, isFloat := raw.(float64)
		if !isFloat {
			return 0, 0, 0, 0, false
		}
		doubles = append(doubles, f)
	}
	return int(doubles[0]), int(doubles[1]), int(doubles[2]), int(doubles[3]), true
}
