//go:build darwin

package ax

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>

extern void voshAXObserverCallback(AXObserverRef observer, AXUIElementRef element, CFStringRef notification, void *refcon);

static AXObserverRef vosh_make_observer(pid_t pid, uintptr_t refconID, AXError *outErr) {
	AXObserverRef obs = NULL;
	*outErr = AXObserverCreate(pid, (AXObserverCallback)voshAXObserverCallback, &obs);
	return obs;
}

static void vosh_observer_add_to_runloop(AXObserverRef obs) {
	CFRunLoopAddSource(CFRunLoopGetMain(), AXObserverGetRunLoopSource(obs), kCFRunLoopDefaultMode);
}

static void vosh_observer_remove_from_runloop(AXObserverRef obs) {
	CFRunLoopRemoveSource(CFRunLoopGetMain(), AXObserverGetRunLoopSource(obs), kCFRunLoopDefaultMode);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// darwinObserver implements Observer atop AXObserverCreate, following the
// notification-registration and run-loop-attach pattern in witnessd's
// focus_darwin.go (there used for NSWorkspace activation notifications; the
// same AXObserver idiom applies directly to AX notifications). The C
// callback is a single process-wide exported function; observers register
// themselves in a global table keyed by an integer id passed as refcon,
// since refcon must be a plain pointer-sized value, not a Go pointer.
type darwinObserver struct {
	mu     sync.Mutex
	obs    C.AXObserverRef
	el     C.AXUIElementRef
	pid    C.pid_t
	id     uintptr
	subs   map[NotificationKind]bool
	outs   []chan Event
	closed bool
}

var (
	observerRegistryMu sync.Mutex
	observerRegistry   = map[uintptr]*darwinObserver{}
	nextObserverID     uintptr
)

func (g *DarwinGateway) Observe(el Element) (Observer, error) {
	ref, err := axElement(el)
	if err != nil {
		return nil, err
	}

	var pid C.pid_t
	if code := C.AXUIElementGetPid(ref, &pid); code != C.kAXErrorSuccess {
		return nil, mapAXError("observe", code)
	}

	observerRegistryMu.Lock()
	nextObserverID++
	id := nextObserverID
	observerRegistryMu.Unlock()

	var axErr C.AXError
	obs := C.vosh_make_observer(pid, C.uintptr_t(id), &axErr)
	if axErr != C.kAXErrorSuccess {
		return nil, mapAXError("observe", axErr)
	}

	d := &darwinObserver{obs: obs, el: ref, pid: pid, id: id, subs: make(map[NotificationKind]bool)}

	observerRegistryMu.Lock()
	observerRegistry[id] = d
	observerRegistryMu.Unlock()

	C.vosh_observer_add_to_runloop(obs)
	return d, nil
}

func notificationCFName(kind NotificationKind) string {
	switch kind {
	case NotifyFocusedWindowChanged:
		return "AXFocusedWindowChanged"
	case NotifyFocusedElementChanged:
		return "AXFocusedUIElementChanged"
	case NotifyTitleChanged:
		return "AXTitleChanged"
	case NotifyValueChanged:
		return "AXValueChanged"
	case NotifyTextSelectionChanged:
		return "AXSelectedTextChanged"
	case NotifyAnnouncementRequested:
		return "AXAnnouncementRequested"
	case NotifyElementDestroyed:
		return "AXUIElementDestroyed"
	case NotifyElementCreated:
		return "AXCreated"
	case NotifyRowCountChanged:
		return "AXRowCountChanged"
	default:
		return ""
	}
}

func notificationKindFromCFName(name string) (NotificationKind, bool) {
	for _, k := range []NotificationKind{
		NotifyFocusedWindowChanged, NotifyFocusedElementChanged, NotifyTitleChanged,
		NotifyValueChanged, NotifyTextSelectionChanged, NotifyAnnouncementRequested,
		NotifyElementDestroyed, NotifyElementCreated, NotifyRowCountChanged,
	} {
		if notificationCFName(k) == name {
			return k, true
		}
	}
	return 0, false
}

func (d *darwinObserver) Subscribe(kind NotificationKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs[kind] {
		return &Error{Kind: NotificationAlreadyRegistered, Op: fmt.Sprintf("subscribe(%s)", kind)}
	}
	name := notificationCFName(kind)
	cfName := goStringToCF(name)
	defer C.CFRelease(C.CFTypeRef(cfName))

	code := C.AXObserverAddNotification(d.obs, d.el, cfName, unsafe.Pointer(uintptr(d.id)))
	if code != C.kAXErrorSuccess {
		return mapAXError("subscribe("+name+")", code)
	}
	d.subs[kind] = true
	return nil
}

func (d *darwinObserver) Unsubscribe(kind NotificationKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.subs[kind] {
		return &Error{Kind: NotificationNotRegistered, Op: fmt.Sprintf("unsubscribe(%s)", kind)}
	}
	name := notificationCFName(kind)
	cfName := goStringToCF(name)
	defer C.CFRelease(C.CFTypeRef(cfName))

	code := C.AXObserverRemoveNotification(d.obs, d.el, cfName)
	if code != C.kAXErrorSuccess {
		return mapAXError("unsubscribe("+name+")", code)
	}
	delete(d.subs, kind)
	return nil
}

func (d *darwinObserver) Events() <-chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan Event, 32)
	d.outs = append(d.outs, ch)
	return ch
}

func (d *darwinObserver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	C.vosh_observer_remove_from_runloop(d.obs)
	C.CFRelease(C.CFTypeRef(d.obs))

	observerRegistryMu.Lock()
	delete(observerRegistry, d.id)
	observerRegistryMu.Unlock()

	for _, ch := range d.outs {
		close(ch)
	}
	return nil
}

func (d *darwinObserver) deliver(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.subs[ev.Kind] {
		return
	}
	for _, ch := range d.outs {
		select {
		case ch <- ev:
		default:
		}
	}
}

//export voshAXObserverCallback
func voshAXObserverCallback(observer C.AXObserverRef, element C.AXUIElementRef, notification C.CFStringRef, refcon unsafe.Pointer) {
	id := uintptr(refcon)
	observerRegistryMu.Lock()
	d := observerRegistry[id]
	observerRegistryMu.Unlock()
	if d == nil {
		return
	}
	name := cfStringToGo(notification)
	kind, ok := notificationKindFromCFName(name)
	if !ok {
		return
	}
	subject := NewElement(axRef{ptr: unsafe.Pointer(element)})
	d.deliver(Event{Kind: kind, Subject: subject})
}
