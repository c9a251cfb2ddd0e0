package speech

// Batch is a scoped handle returned by Scheduler.MakeQueue. Callers enqueue
// string tokens and commit them with Flush, which stops the synthesizer and
// speaks each enqueued token as a separate utterance, in order — subject to
// the same announcement-pre-emption deferral as Convey.
type Batch struct {
	sched *Scheduler
	items []string
}

// MakeQueue returns a new, empty Batch bound to s.
func (s *Scheduler) MakeQueue() *Batch {
	return &Batch{sched: s}
}

// Enqueue appends a literal utterance string to the batch.
func (b *Batch) Enqueue(text string) {
	b.items = append(b.items, text)
}

// EnqueueToken renders t and appends it, skipping silent control tokens.
func (b *Batch) EnqueueToken(t Token) {
	if Silent(t) {
		return
	}
	b.items = append(b.items, Render(t))
}

// Flush commits the batch to the scheduler's readout lane.
func (b *Batch) Flush() {
	b.sched.commitReadout(b.items)
}
