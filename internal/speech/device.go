package speech

// Device is the TTS device contract the Scheduler drives: speak one
// utterance at a time, stop immediately on interrupt/pre-emption, and
// report completion back through Scheduler.DidFinishUtterance so the
// Scheduler can drain its queues. Rate/volume/voice-identifier are
// forwarded opaquely by whatever constructs the concrete Device; the
// Scheduler itself never interprets them.
type Device interface {
	// Speak begins uttering text. The Scheduler calls this only after any
	// prior utterance has either finished or been Stopped.
	Speak(text string)
	// Stop halts whatever is currently being spoken immediately, without a
	// completion callback for the interrupted utterance.
	Stop()
}

// MockDevice is an in-memory Device recording every Speak/Stop call, for
// Scheduler unit tests and the end-to-end scenarios. Callers drive
// completion explicitly by calling Scheduler.DidFinishUtterance — MockDevice
// never finishes on its own, mirroring a real TTS engine's asynchrony.
type MockDevice struct {
	Spoken []string
	Stops  int
}

func NewMockDevice() *MockDevice { return &MockDevice{} }

func (d *MockDevice) Speak(text string) {
	d.Spoken = append(d.Spoken, text)
}

func (d *MockDevice) Stop() {
	d.Stops++
}
