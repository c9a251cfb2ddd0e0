//go:build darwin

package ax

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework CoreGraphics -framework Foundation

#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdlib.h>

static Boolean vosh_confirm_trusted(int prompt) {
	CFStringRef key = kAXTrustedCheckOptionPrompt;
	CFDictionaryRef opts = CFDictionaryCreate(kCFAllocatorDefault,
		(const void **)&key, (const void **)(prompt ? &kCFBooleanTrue : &kCFBooleanFalse),
		1, &kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(opts);
	CFRelease(opts);
	return trusted;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unsafe"
)

// DarwinGateway implements Gateway over ApplicationServices' AXUIElement
// API via cgo. The element tree walk and attribute-value bridging follow
// the idiom in the pack's mj1618-desktop-cli darwin reader (flat-to-tree
// AXUIElement enumeration, CFTypeRef→Go value bridging); the trust check
// and notification plumbing follow writerslogic-witnessd's focus_darwin.go
// (AXIsProcessTrustedWithOptions with the prompt option, AXObserver
// callbacks registered on the process's run loop).
type DarwinGateway struct {
	mu      sync.Mutex
	timeout time.Duration
}

// NewDarwinGateway constructs a gateway with the contract's default 5s
// per-call deadline.
func NewDarwinGateway() *DarwinGateway {
	return &DarwinGateway{timeout: 5 * time.Second}
}

func (g *DarwinGateway) SetTimeout(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeout = d
	C.AXUIElementSetMessagingTimeout(nil, C.float(d.Seconds()))
}

// ConfirmTrusted mirrors witnessd's sentinel_promptAccessibilityPermission:
// ask with the prompt option so the OS raises the System Settings dialog on
// denial, exactly once at startup.
func (g *DarwinGateway) ConfirmTrusted() bool {
	return bool(C.vosh_confirm_trusted(1))
}

func (g *DarwinGateway) SystemWide() Element {
	ref := C.AXUIElementCreateSystemWide()
	return NewElement(axRef(ref))
}

func (g *DarwinGateway) ForApplication(pid int) Element {
	ref := C.AXUIElementCreateApplication(C.pid_t(pid))
	return NewElement(axRef(ref))
}

// axRef wraps a CFTypeRef/AXUIElementRef in a comparable Go value so Element
// equality reduces to Go's struct ==. CFEqual semantics for AXUIElementRef
// already coincide with pointer identity for a given run, which is all the
// contract requires.
type axRef struct{ ptr unsafe.Pointer }

func axElement(e Element) (C.AXUIElementRef, error) {
	r, ok := e.ref.(axRef)
	if !ok || r.ptr == nil {
		return nil, &Error{Kind: InvalidElement, Op: "axElement"}
	}
	return C.AXUIElementRef(r.ptr), nil
}

func mapAXError(op string, code C.AXError) error {
	var kind ErrorKind
	switch code {
	case C.kAXErrorSuccess:
		return nil
	case C.kAXErrorFailure:
		kind = SystemFailure
	case C.kAXErrorIllegalArgument:
		kind = IllegalArgument
	case C.kAXErrorInvalidUIElement:
		kind = InvalidElement
	case C.kAXErrorInvalidUIElementObserver:
		kind = InvalidObserver
	case C.kAXErrorCannotComplete:
		kind = Timeout
	case C.kAXErrorAttributeUnsupported:
		kind = AttributeUnsupported
	case C.kAXErrorActionUnsupported:
		kind = ActionUnsupported
	case C.kAXErrorNotificationUnsupported:
		kind = NotificationUnsupported
	case C.kAXErrorParameterizedAttributeUnsupported:
		kind = ParameterizedAttributeUnsupported
	case C.kAXErrorNotImplemented:
		kind = NotImplemented
	case C.kAXErrorNotificationAlreadyRegistered:
		kind = NotificationAlreadyRegistered
	case C.kAXErrorNotificationNotRegistered:
		kind = NotificationNotRegistered
	case C.kAXErrorAPIDisabled:
		kind = APIDisabled
	case C.kAXErrorNoValue:
		kind = NoValue
	case C.kAXErrorNotEnoughPrecision:
		kind = NotEnoughPrecision
	default:
		panic(fmt.Sprintf("ax: unmapped AXError %d from %s", int(code), op))
	}
	return &Error{Kind: kind, Op: op}
}

func cfStringToGo(ref C.CFStringRef) string {
	if ref == 0 {
		return ""
	}
	n := C.CFStringGetLength(ref)
	if n == 0 {
		return ""
	}
	maxBytes := C.CFStringGetMaximumSizeForEncoding(n, C.kCFStringEncodingUTF8) + 1
	buf := make([]byte, int(maxBytes))
	ok := C.CFStringGetCString(ref, (*C.char)(unsafe.Pointer(&buf[0])), maxBytes, C.kCFStringEncodingUTF8)
	if ok == 0 {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

// cfToValue bridges a CFTypeRef attribute value to our closed Value
// taxonomy, following the type-dispatch the desktop-cli reader uses when
// enriching its flat element list (switch on CFGetTypeID).
func cfToValue(ref C.CFTypeRef) Value {
	if ref == 0 {
		return Null()
	}
	typeID := C.CFGetTypeID(ref)
	switch typeID {
	case C.CFStringGetTypeID():
		return String(cfStringToGo(C.CFStringRef(ref)))
	case C.CFBooleanGetTypeID():
		return Bool(bool(C.CFBooleanGetValue(C.CFBooleanRef(ref))))
	case C.CFNumberGetTypeID():
		var i C.longlong
		if C.CFNumberGetValue(C.CFNumberRef(ref), C.kCFNumberLongLongType, unsafe.Pointer(&i)) != 0 {
			return Int64(int64(i))
		}
		var d C.double
		C.CFNumberGetValue(C.CFNumberRef(ref), C.kCFNumberDoubleType, unsafe.Pointer(&d))
		return Double(float64(d))
	case C.AXUIElementGetTypeID():
		return ElementValue(NewElement(axRef{ptr: unsafe.Pointer(ref)}))
	case C.CFArrayGetTypeID():
		arr := C.CFArrayRef(ref)
		n := int(C.CFArrayGetCount(arr))
		vs := make([]Value, n)
		for i := 0; i < n; i++ {
			item := C.CFArrayGetValueAtIndex(arr, C.CFIndex(i))
			vs[i] = cfToValue(C.CFTypeRef(item))
		}
		return ArrayValue(vs)
	default:
		if typeID == C.AXValueGetTypeID() {
			return axValueToValue(C.AXValueRef(ref))
		}
		return Null()
	}
}

func axValueToValue(v C.AXValueRef) Value {
	switch C.AXValueGetType(v) {
	case C.kAXValueCGPointType:
		var p C.CGPoint
		C.AXValueGetValue(v, C.kAXValueCGPointType, unsafe.Pointer(&p))
		return Pt(float64(p.x), float64(p.y))
	case C.kAXValueCGSizeType:
		var s C.CGSize
		C.AXValueGetValue(v, C.kAXValueCGSizeType, unsafe.Pointer(&s))
		return Sz(float64(s.width), float64(s.height))
	case C.kAXValueCGRectType:
		var r C.CGRect
		C.AXValueGetValue(v, C.kAXValueCGRectType, unsafe.Pointer(&r))
		return Rct(Rect{Origin: Point{float64(r.origin.x), float64(r.origin.y)}, Size: Size{float64(r.size.width), float64(r.size.height)}})
	case C.kAXValueCFRangeType:
		var rg C.CFRange
		C.AXValueGetValue(v, C.kAXValueCFRangeType, unsafe.Pointer(&rg))
		return Rng(int64(rg.location), int64(rg.length))
	default:
		return Null()
	}
}

func goStringToCF(s string) C.CFStringRef {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return C.CFStringCreateWithCString(C.kCFAllocatorDefault, cs, C.kCFStringEncodingUTF8)
}

func (g *DarwinGateway) GetAttribute(ctx context.Context, el Element, name string) (Value, error) {
	ref, err := axElement(el)
	if err != nil {
		return Null(), err
	}
	cfName := goStringToCF(name)
	defer C.CFRelease(C.CFTypeRef(cfName))

	var out C.CFTypeRef
	code := C.AXUIElementCopyAttributeValue(ref, cfName, &out)
	if code != C.kAXErrorSuccess {
		return Null(), mapAXError("getAttribute("+name+")", code)
	}
	defer C.CFRelease(out)
	return cfToValue(out), nil
}

func (g *DarwinGateway) SetAttribute(ctx context.Context, el Element, name string, v Value) error {
	ref, err := axElement(el)
	if err != nil {
		return err
	}
	cfName := goStringToCF(name)
	defer C.CFRelease(C.CFTypeRef(cfName))

	switch v.Kind {
	case KindBool:
		b := C.kCFBooleanFalse
		if v.Bool {
			b = C.kCFBooleanTrue
		}
		code := C.AXUIElementSetAttributeValue(ref, cfName, C.CFTypeRef(b))
		if code != C.kAXErrorSuccess {
			return mapAXError("setAttribute("+name+")", code)
		}
		return nil
	case KindString:
		s := goStringToCF(v.String)
		defer C.CFRelease(C.CFTypeRef(s))
		code := C.AXUIElementSetAttributeValue(ref, cfName, C.CFTypeRef(s))
		if code != C.kAXErrorSuccess {
			return mapAXError("setAttribute("+name+")", code)
		}
		return nil
	default:
		return &Error{Kind: IllegalArgument, Op: "setAttribute(" + name + ")"}
	}
}

func (g *DarwinGateway) QueryParameterized(ctx context.Context, el Element, name string, input Value) (Value, error) {
	ref, err := axElement(el)
	if err != nil {
		return Null(), err
	}
	cfName := goStringToCF(name)
	defer C.CFRelease(C.CFTypeRef(cfName))

	var inRef C.CFTypeRef
	switch input.Kind {
	case KindIntegerRange:
		rg := C.CFRange{location: C.CFIndex(input.Range.Start), length: C.CFIndex(input.Range.Length)}
		inRef = C.CFTypeRef(C.AXValueCreate(C.kAXValueCFRangeType, unsafe.Pointer(&rg)))
		defer C.CFRelease(inRef)
	case KindInt64:
		n := C.longlong(input.Int64)
		num := C.CFNumberCreate(C.kCFAllocatorDefault, C.kCFNumberLongLongType, unsafe.Pointer(&n))
		inRef = C.CFTypeRef(num)
		defer C.CFRelease(inRef)
	default:
		return Null(), &Error{Kind: IllegalArgument, Op: "query(" + name + ")"}
	}

	var out C.CFTypeRef
	code := C.AXUIElementCopyParameterizedAttributeValue(ref, cfName, inRef, &out)
	if code != C.kAXErrorSuccess {
		return Null(), mapAXError("query("+name+")", code)
	}
	defer C.CFRelease(out)
	return cfToValue(out), nil
}

func (g *DarwinGateway) ListAttributes(ctx context.Context, el Element) ([]string, error) {
	ref, err := axElement(el)
	if err != nil {
		return nil, err
	}
	var names C.CFArrayRef
	code := C.AXUIElementCopyAttributeNames(ref, &names)
	if code != C.kAXErrorSuccess {
		return nil, mapAXError("listAttributes", code)
	}
	defer C.CFRelease(C.CFTypeRef(names))

	n := int(C.CFArrayGetCount(names))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		item := C.CFArrayGetValueAtIndex(names, C.CFIndex(i))
		out[i] = cfStringToGo(C.CFStringRef(item))
	}
	return out, nil
}

func (g *DarwinGateway) ListActions(ctx context.Context, el Element) ([]Action, error) {
	ref, err := axElement(el)
	if err != nil {
		return nil, err
	}
	var names C.CFArrayRef
	code := C.AXUIElementCopyActionNames(ref, &names)
	if code != C.kAXErrorSuccess {
		return nil, mapAXError("listActions", code)
	}
	defer C.CFRelease(C.CFTypeRef(names))

	n := int(C.CFArrayGetCount(names))
	out := make([]Action, n)
	for i := 0; i < n; i++ {
		item := C.CFStringRef(C.CFArrayGetValueAtIndex(names, C.CFIndex(i)))
		id := cfStringToGo(item)

		var desc C.CFStringRef
		C.AXUIElementCopyActionDescription(ref, item, &desc)
		description := cfStringToGo(desc)
		if desc != 0 {
			C.CFRelease(C.CFTypeRef(desc))
		}
		out[i] = Action{ID: id, Description: description}
	}
	return out, nil
}

func (g *DarwinGateway) PerformAction(ctx context.Context, el Element, id string) error {
	ref, err := axElement(el)
	if err != nil {
		return err
	}
	cfID := goStringToCF(id)
	defer C.CFRelease(C.CFTypeRef(cfID))

	code := C.AXUIElementPerformAction(ref, cfID)
	if code != C.kAXErrorSuccess {
		return mapAXError("performAction("+id+")", code)
	}
	return nil
}

func (g *DarwinGateway) Dump(ctx context.Context, el Element, recurseParents, recurseChildren bool) (*DumpNode, error) {
	names, err := g.ListAttributes(ctx, el)
	if err != nil {
		return nil, err
	}
	node := &DumpNode{Attributes: make(map[string]Value, len(names))}
	for _, name := range names {
		v, err := g.GetAttribute(ctx, el, name)
		if err == nil {
			node.Attributes[name] = v
		}
	}
	if actions, err := g.ListActions(ctx, el); err == nil {
		for _, a := range actions {
			node.Actions = append(node.Actions, a.ID)
		}
	}
	if recurseParents {
		if pv, ok := node.Attributes[AttrParent]; ok && pv.Kind == KindElement {
			if pd, err := g.Dump(ctx, pv.Element, true, false); err == nil {
				node.Parent = pd
			}
		}
	}
	if recurseChildren {
		if cv, ok := node.Attributes[AttrChildren]; ok && cv.Kind == KindArray {
			for _, c := range cv.Array {
				if c.Kind != KindElement {
					continue
				}
				if cd, err := g.Dump(ctx, c.Element, false, true); err == nil {
					node.Children = append(node.Children, cd)
				}
			}
		}
	}
	return node, nil
}
