package speech

import (
	"log/slog"
	"sync"
)

type lane int

const (
	laneNone lane = iota
	laneAnnounce
	laneReadout
)

// Scheduler is the priority speech scheduler: a single logical serial queue
// with two lanes. Announcements always pre-empt readouts; within a lane,
// utterances are strictly FIFO. It is driven by the device's did-finish
// callback, not by blocking on Speak, since the real TTS device is
// asynchronous.
type Scheduler struct {
	device Device
	log    *slog.Logger

	mu             sync.Mutex
	currentLane    lane
	speaking       bool
	announceQueue  []string
	readoutQueue   []string
	stashedReadout []string
}

// New constructs a Scheduler driving device.
func New(device Device, log *slog.Logger) *Scheduler {
	return &Scheduler{device: device, log: log}
}

// Announce submits a high-priority utterance. If no announcement is
// currently active, any speech in progress (necessarily a readout) is
// stopped immediately and s begins speaking; otherwise s is appended to the
// announcement lane and plays after the current one finishes.
func (s *Scheduler) Announce(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLane != laneAnnounce {
		s.device.Stop()
		s.readoutQueue = nil
		s.announceQueue = []string{text}
		s.currentLane = laneAnnounce
		s.speaking = false
		s.startNextLocked()
		return
	}
	s.announceQueue = append(s.announceQueue, text)
}

// Convey renders tokens to utterances (silent control tokens dropped) and
// submits them as a readout batch — the semantic entry point the Navigator
// and Semantic Reader use instead of hand-building a Batch.
func (s *Scheduler) Convey(tokens []Token) {
	s.commitReadout(renderUtterances(tokens))
}

// Interrupt clears both lanes and stops the synthesizer immediately. Used
// by the solo-Control interrupt chord.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.announceQueue = nil
	s.readoutQueue = nil
	s.stashedReadout = nil
	s.currentLane = laneNone
	s.speaking = false
	s.device.Stop()
}

// DidFinishUtterance must be called by the Device (or its driver) when the
// utterance most recently passed to Speak completes. It drains the
// announcement lane first; once empty, any stashed or pending readouts
// play.
func (s *Scheduler) DidFinishUtterance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = false
	s.startNextLocked()
}

func (s *Scheduler) commitReadout(utterances []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLane == laneAnnounce {
		s.stashedReadout = utterances
		return
	}
	s.device.Stop()
	s.readoutQueue = utterances
	s.currentLane = laneReadout
	s.speaking = false
	s.startNextLocked()
}

// startNextLocked advances to the next queued utterance in the current
// lane, falling through to stashed readouts once the announcement lane
// drains. Caller must hold s.mu.
func (s *Scheduler) startNextLocked() {
	if s.speaking {
		return
	}
	switch s.currentLane {
	case laneAnnounce:
		if len(s.announceQueue) == 0 {
			s.currentLane = laneNone
			if len(s.stashedReadout) > 0 {
				s.readoutQueue = s.stashedReadout
				s.stashedReadout = nil
				s.currentLane = laneReadout
				s.startNextLocked()
			}
			return
		}
		text := s.announceQueue[0]
		s.announceQueue = s.announceQueue[1:]
		s.speaking = true
		s.device.Speak(text)
	case laneReadout:
		if len(s.readoutQueue) == 0 {
			s.currentLane = laneNone
			return
		}
		text := s.readoutQueue[0]
		s.readoutQueue = s.readoutQueue[1:]
		s.speaking = true
		s.device.Speak(text)
	}
}

func renderUtterances(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if Silent(t) {
			continue
		}
		out = append(out, Render(t))
	}
	return out
}
