//go:build darwin

package speech

/*
#cgo LDFLAGS: -framework AppKit -framework Foundation

#import <AppKit/AppKit.h>
#include <stdlib.h>
#include <string.h>

extern void voshSpeechFinished(int deviceID);

@interface VoshSpeechDelegate : NSObject <NSSpeechSynthesizerDelegate>
@property (assign) int deviceID;
- (void)speechSynthesizer:(NSSpeechSynthesizer *)sender didFinishSpeaking:(BOOL)finishedSpeaking;
@end

@implementation VoshSpeechDelegate
- (void)speechSynthesizer:(NSSpeechSynthesizer *)sender didFinishSpeaking:(BOOL)finishedSpeaking {
	if (finishedSpeaking) {
		voshSpeechFinished(self.deviceID);
	}
}
@end

static void *vosh_make_synthesizer(const char *voiceIdentifier, int deviceID) {
	NSSpeechSynthesizer *synth = [[NSSpeechSynthesizer alloc] init];
	VoshSpeechDelegate *delegate = [[VoshSpeechDelegate alloc] init];
	delegate.deviceID = deviceID;
	synth.delegate = delegate;
	if (voiceIdentifier != NULL && strlen(voiceIdentifier) > 0) {
		NSString *ident = [NSString stringWithUTF8String:voiceIdentifier];
		[synth setVoice:ident];
	}
	return (void *)CFBridgingRetain(synth);
}

static void vosh_synth_set_rate(void *synthRef, double rate) {
	NSSpeechSynthesizer *synth = (__bridge NSSpeechSynthesizer *)synthRef;
	synth.rate = rate * 180.0;
}

static void vosh_synth_set_volume(void *synthRef, double volume) {
	NSSpeechSynthesizer *synth = (__bridge NSSpeechSynthesizer *)synthRef;
	synth.volume = volume;
}

static void vosh_synth_speak(void *synthRef, const char *text) {
	NSSpeechSynthesizer *synth = (__bridge NSSpeechSynthesizer *)synthRef;
	NSString *s = [NSString stringWithUTF8String:text];
	[synth startSpeakingString:s];
}

static void vosh_synth_stop(void *synthRef) {
	NSSpeechSynthesizer *synth = (__bridge NSSpeechSynthesizer *)synthRef;
	[synth stopSpeaking];
}

static void vosh_synth_release(void *synthRef) {
	CFBridgingRelease(synthRef);
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// DarwinDevice drives NSSpeechSynthesizer, following the same cgo/Foundation
// delegate-callback idiom as the AX observer and frontmost-application
// bindings: a global id-keyed registry stands in for a Go pointer crossing
// the cgo boundary, and the Objective-C delegate calls back into an
// exported Go function on completion.
type DarwinDevice struct {
	native  unsafe.Pointer
	id      int
	onDone  func()
}

var (
	speechRegistryMu sync.Mutex
	speechRegistry   = map[int]*DarwinDevice{}
	speechNextID     int
)

// NewDarwinDevice constructs a Device backed by NSSpeechSynthesizer. onDone
// is called (not necessarily from the main goroutine) when the current
// utterance runs to completion; an utterance ended by Stop produces no
// call. The caller wires this to Scheduler.DidFinishUtterance.
func NewDarwinDevice(voiceIdentifier string, rate, volume float64, onDone func()) *DarwinDevice {
	speechRegistryMu.Lock()
	speechNextID++
	id := speechNextID
	speechRegistryMu.Unlock()

	cVoice := C.CString(voiceIdentifier)
	defer C.free(unsafe.Pointer(cVoice))

	d := &DarwinDevice{id: id, onDone: onDone}
	d.native = C.vosh_make_synthesizer(cVoice, C.int(id))
	C.vosh_synth_set_rate(d.native, C.double(rate))
	C.vosh_synth_set_volume(d.native, C.double(volume))

	speechRegistryMu.Lock()
	speechRegistry[id] = d
	speechRegistryMu.Unlock()

	return d
}

func (d *DarwinDevice) Speak(text string) {
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))
	C.vosh_synth_speak(d.native, cText)
}

func (d *DarwinDevice) Stop() {
	C.vosh_synth_stop(d.native)
}

// Close releases the underlying NSSpeechSynthesizer and delegate.
func (d *DarwinDevice) Close() {
	speechRegistryMu.Lock()
	delete(speechRegistry, d.id)
	speechRegistryMu.Unlock()
	C.vosh_synth_release(d.native)
}

//export voshSpeechFinished
func voshSpeechFinished(deviceID C.int) {
	speechRegistryMu.Lock()
	d, ok := speechRegistry[int(deviceID)]
	speechRegistryMu.Unlock()
	if ok && d.onDone != nil {
		d.onDone()
	}
}
