package session

import (
	"sync"
	"time"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// StatusTimeout is how long a message stays before the display reverts to Ready.
const StatusTimeout = 3 * time.Second

// StatusBoard holds the current status message and its reset timer. A new
// message overwrites the old one and restarts the timer; nothing is queued.
type StatusBoard struct {
	mu      sync.Mutex
	clock   Clock
	current models.StatusMessage
	gen     uint64
	timer   Timer
	subs    map[int]func(models.StatusMessage)
	nextSub int

	// notifyMu keeps subscriber notifications in transition order
	notifyMu sync.Mutex
}

// NewStatusBoard returns a board showing Ready.
func NewStatusBoard(clock Clock) *StatusBoard {
	if clock == nil {
		clock = RealClock()
	}
	return &StatusBoard{
		clock:   clock,
		current: models.Ready(),
		subs:    make(map[int]func(models.StatusMessage)),
	}
}

// Set shows text and restarts the reset timer.
func (b *StatusBoard) Set(text string, isError bool) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.current = models.StatusMessage{Text: text, IsError: isError}
	b.timer = b.clock.AfterFunc(StatusTimeout, func() { b.expire(gen) })
	b.publishLocked()
}

// expire reverts to Ready unless a newer message has been set since gen.
func (b *StatusBoard) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.current = models.Ready()
	b.publishLocked()
}

// publishLocked notifies subscribers of the current message and releases mu.
func (b *StatusBoard) publishLocked() {
	msg := b.current
	subs := make([]func(models.StatusMessage), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.notifyMu.Lock()
	b.mu.Unlock()
	defer b.notifyMu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

// Current returns the message on display.
func (b *StatusBoard) Current() models.StatusMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// OnChange registers fn for every transition and returns a function that
// removes it. fn must not call back into the board.
func (b *StatusBoard) OnChange(fn func(models.StatusMessage)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Close stops the pending timer and drops subscribers.
func (b *StatusBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.subs = make(map[int]func(models.StatusMessage))
}
