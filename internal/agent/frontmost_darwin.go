//go:build darwin

package agent

/*
#cgo LDFLAGS: -framework AppKit -framework Foundation

#import <AppKit/AppKit.h>

extern void voshFrontmostChanged(int pid);

@interface VoshFrontmostObserver : NSObject
- (void)appActivated:(NSNotification *)note;
@end

@implementation VoshFrontmostObserver
- (void)appActivated:(NSNotification *)note {
	NSRunningApplication *app = note.userInfo[NSWorkspaceApplicationKey];
	voshFrontmostChanged((int)app.processIdentifier);
}
@end

static void *vosh_install_frontmost_observer(void) {
	VoshFrontmostObserver *obs = [[VoshFrontmostObserver alloc] init];
	[[[NSWorkspace sharedWorkspace] notificationCenter]
		addObserver:obs
		selector:@selector(appActivated:)
		name:NSWorkspaceDidActivateApplicationNotification
		object:nil];
	return (void *)CFBridgingRetain(obs);
}

static void vosh_remove_frontmost_observer(void *obsRef) {
	id obs = (id)CFBridgingRelease(obsRef);
	[[[NSWorkspace sharedWorkspace] notificationCenter] removeObserver:obs];
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// DarwinFrontmost watches NSWorkspaceDidActivateApplicationNotification,
// following witnessd's focus_darwin.go observer-registration idiom
// (addObserver:selector:name:object: against NSWorkspace's notification
// center, torn down with removeObserver: on Close).
type DarwinFrontmost struct {
	ch     chan int
	native unsafe.Pointer
}

// NewDarwinFrontmost installs the NSWorkspace observer and returns a feed
// of PIDs as applications activate.
func NewDarwinFrontmost() *DarwinFrontmost {
	f := &DarwinFrontmost{ch: make(chan int, 8)}
	frontmostRegistryMu.Lock()
	frontmostRegistry = append(frontmostRegistry, f)
	frontmostRegistryMu.Unlock()
	f.native = C.vosh_install_frontmost_observer()
	return f
}

func (f *DarwinFrontmost) Changes() <-chan int { return f.ch }

func (f *DarwinFrontmost) Close() error {
	C.vosh_remove_frontmost_observer(f.native)
	close(f.ch)
	return nil
}

var (
	frontmostRegistryMu sync.Mutex
	frontmostRegistry   []*DarwinFrontmost
)

//export voshFrontmostChanged
func voshFrontmostChanged(pid C.int) {
	frontmostRegistryMu.Lock()
	targets := append([]*DarwinFrontmost(nil), frontmostRegistry...)
	frontmostRegistryMu.Unlock()
	for _, f := range targets {
		select {
		case f.ch <- int(pid):
		default:
		}
	}
}
