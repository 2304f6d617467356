package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/kubejs-editor/internal/models"
)

func TestStatusRevertsAfterTimeout(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	board := NewStatusBoard(clock)

	board.Set("Saved", false)
	assert.Equal(t, models.StatusMessage{Text: "Saved"}, board.Current())

	clock.Advance(StatusTimeout - time.Millisecond)
	assert.Equal(t, "Saved", board.Current().Text)

	clock.Advance(time.Millisecond)
	assert.Equal(t, models.Ready(), board.Current())
}

func TestStatusTimerRestarts(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	board := NewStatusBoard(clock)

	var history []models.StatusMessage
	board.OnChange(func(msg models.StatusMessage) {
		history = append(history, msg)
	})

	board.Set("X", false)
	clock.Advance(2 * time.Second)
	board.Set("X", false)

	// First timer would have fired here
	clock.Advance(time.Second + 500*time.Millisecond)
	assert.Equal(t, "X", board.Current().Text)

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, models.Ready(), board.Current())

	clock.Advance(10 * time.Second)

	readyCount := 0
	for _, msg := range history {
		if msg.Text == models.ReadyText {
			readyCount++
		}
	}
	assert.Equal(t, 1, readyCount)
	assert.Equal(t, []models.StatusMessage{{Text: "X"}, {Text: "X"}, models.Ready()}, history)
	assert.Equal(t, 0, clock.Pending())
}

func TestStatusLastWriterWins(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	board := NewStatusBoard(clock)

	board.Set("first", false)
	board.Set("second", true)
	assert.Equal(t, models.StatusMessage{Text: "second", IsError: true}, board.Current())
	assert.Equal(t, 1, clock.Pending())
}

func TestStatusUnsubscribe(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	board := NewStatusBoard(clock)

	calls := 0
	cancel := board.OnChange(func(models.StatusMessage) { calls++ })
	board.Set("a", false)
	cancel()
	board.Set("b", false)

	assert.Equal(t, 1, calls)
}

func TestStatusClose(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	board := NewStatusBoard(clock)

	board.Set("pending", false)
	board.Close()
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(StatusTimeout)
	assert.Equal(t, "pending", board.Current().Text)
}

func TestStatusRealClock(t *testing.T) {
	board := NewStatusBoard(nil)

	var mu sync.Mutex
	done := make(chan struct{})
	board.OnChange(func(msg models.StatusMessage) {
		mu.Lock()
		defer mu.Unlock()
		if msg.Text == models.ReadyText {
			close(done)
		}
	})

	board.Set("hello", false)
	require.Equal(t, "hello", board.Current().Text)

	select {
	case <-done:
	case <-time.After(StatusTimeout + 2*time.Second):
		t.Fatal("status never reverted to Ready")
	}
	assert.Equal(t, models.Ready(), board.Current())
}

func TestFakeClockOrder(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	var order []string
	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(time.Second, func() { order = append(order, "a") })
	stopped := clock.AfterFunc(time.Second, func() { order = append(order, "never") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, time.Unix(5, 0), clock.Now())
}
