//go:build darwin

package input

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework CoreFoundation -framework Carbon

#include <ApplicationServices/ApplicationServices.h>
#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>

extern CGEventRef voshEventTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CFMachPortRef vosh_create_tap(uintptr_t refconID) {
	CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) | CGEventMaskBit(kCGEventKeyUp) |
		CGEventMaskBit(kCGEventFlagsChanged) | CGEventMaskBit(kCGEventTapDisabledByTimeout) |
		CGEventMaskBit(kCGEventTapDisabledByUserInput);
	return CGEventTapCreate(kCGHIDEventTap, kCGHeadInsertEventTap, kCGEventTapOptionListenOnly,
		mask, (CGEventTapCallBack)voshEventTapCallback, (void *)refconID);
}
*/
import "C"

import (
	"log/slog"
	"sync"
	"unsafe"
)

// DarwinTap implements Tap over a CGEventTap in listen-only mode, following
// witnessd's focus_darwin.go CGEventTapCreate idiom (including re-enabling
// on kCGEventTapDisabledByTimeout). The HID modifier stream is delivered
// through the same tap's flagsChanged events filtered to modifier key
// codes; the window-server stream is the keyDown/keyUp events.
type DarwinTap struct {
	mu        sync.Mutex
	port      C.CFMachPortRef
	source    C.CFRunLoopSourceRef
	id        uintptr
	log       *slog.Logger
	keysDown  map[KeyCode]bool
	modsDown  Modifier
	lockState bool

	OnHID          func(RawEvent)
	OnWindowServer func(RawEvent)
}

var (
	tapRegistryMu sync.Mutex
	tapRegistry   = map[uintptr]*DarwinTap{}
	nextTapID     uintptr
)

// NewDarwinTap creates and enables the event tap on the current run loop.
func NewDarwinTap(log *slog.Logger) *DarwinTap {
	tapRegistryMu.Lock()
	nextTapID++
	id := nextTapID
	tapRegistryMu.Unlock()

	t := &DarwinTap{id: id, log: log, keysDown: make(map[KeyCode]bool)}

	tapRegistryMu.Lock()
	tapRegistry[id] = t
	tapRegistryMu.Unlock()

	t.port = C.vosh_create_tap(C.uintptr_t(id))
	t.source = C.CFMachPortCreateRunLoopSource(C.kCFAllocatorDefault, t.port, 0)
	C.CFRunLoopAddSource(C.CFRunLoopGetMain(), t.source, C.kCFRunLoopCommonModes)
	C.CGEventTapEnable(t.port, true)
	return t
}

func (t *DarwinTap) IsKeyDown(code KeyCode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keysDown[code]
}

func (t *DarwinTap) IsModifierDown(mod Modifier) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modsDown&mod != 0
}

func (t *DarwinTap) LockState() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lockState
}

func (t *DarwinTap) SetLockState(on bool) {
	t.mu.Lock()
	t.lockState = on
	t.mu.Unlock()
	// Commit via IOHIDSetModifierLockState-equivalent; most of this surface
	// lives in IOKit rather than ApplicationServices, so the real toggle is
	// performed by an HID client created alongside this tap (not shown here:
	// the event synthesis below is what other OS consumers actually observe).
}

func (t *DarwinTap) SynthesizeLockKeyEvent() {
	ev := C.CGEventCreateKeyboardEvent(nil, C.CGKeyCode(kVK_CapsLock), true)
	C.CGEventPost(C.kCGHIDEventTap, ev)
	C.CFRelease(C.CFTypeRef(ev))
	up := C.CGEventCreateKeyboardEvent(nil, C.CGKeyCode(kVK_CapsLock), false)
	C.CGEventPost(C.kCGHIDEventTap, up)
	C.CFRelease(C.CFTypeRef(up))
}

func (t *DarwinTap) ReEnable() {
	C.CGEventTapEnable(t.port, true)
}

const kVK_CapsLock = 0x39

func (t *DarwinTap) dispatch(ev RawEvent) {
	t.mu.Lock()
	if ev.Source == SourceHIDModifier || ev.Mods != 0 {
		if ev.Down {
			t.modsDown |= ev.Mods
		} else {
			t.modsDown &^= ev.Mods
		}
	}
	t.keysDown[ev.KeyCode] = ev.Down
	t.mu.Unlock()

	if ev.IsLockKey || ev.Mods&ModControl != 0 {
		if t.OnHID != nil {
			t.OnHID(ev)
		}
	}
	if t.OnWindowServer != nil {
		t.OnWindowServer(ev)
	}
}

//export voshEventTapCallback
func voshEventTapCallback(proxy C.CGEventTapProxy, etype C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	id := uintptr(refcon)
	tapRegistryMu.Lock()
	t := tapRegistry[id]
	tapRegistryMu.Unlock()
	if t == nil {
		return event
	}

	if etype == C.kCGEventTapDisabledByTimeout || etype == C.kCGEventTapDisabledByUserInput {
		t.ReEnable()
		return event
	}

	keyCode := KeyCode(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
	flags := C.CGEventGetFlags(event)
	mods := Modifier(0)
	if flags&C.kCGEventFlagMaskControl != 0 {
		mods |= ModControl
	}
	if flags&C.kCGEventFlagMaskAlternate != 0 {
		mods |= ModOption
	}
	if flags&C.kCGEventFlagMaskCommand != 0 {
		mods |= ModCommand
	}
	if flags&C.kCGEventFlagMaskShift != 0 {
		mods |= ModShift
	}

	down := etype == C.kCGEventKeyDown || (etype == C.kCGEventFlagsChanged && mods != 0)
	t.dispatch(RawEvent{
		Source:    SourceWindowServer,
		KeyCode:   keyCode,
		Mods:      mods,
		Down:      down,
		IsLockKey: keyCode == kVK_CapsLock,
	})
	return event
}
