package engine

import (
	"context"
	"sync/atomic"
	"time"
)

type counters struct {
	renders         atomic.Uint64
	frames          atomic.Uint64
	droppedMessages atomic.Uint64
	droppedNotes    atomic.Uint64
	patternFull     atomic.Uint64
	badTrack        atomic.Uint64
	scheduleDropped atomic.Uint64
	pendingDropped  atomic.Uint64
}

// Stats is a snapshot of the engine counters.
type Stats struct {
	Renders uint64
	Frames  uint64
	// DroppedMessages counts Send calls that found the queue full.
	DroppedMessages uint64
	// DroppedNotes counts notifications lost to a full notify queue.
	DroppedNotes uint64
	// PatternFull counts events rejected by a full pattern.
	PatternFull uint64
	// BadTrack counts messages and events addressed to a missing track.
	BadTrack        uint64
	ScheduleDropped uint64
	PendingDropped  uint64
}

// Drops returns the sum of every loss counter.
func (s Stats) Drops() uint64 {
	return s.DroppedMessages + s.DroppedNotes + s.PatternFull + s.BadTrack +
		s.ScheduleDropped + s.PendingDropped
}

// Stats returns the current counters. Safe for concurrent use.
func (e *Engine) Stats() Stats {
	return Stats{
		Renders:         e.stats.renders.Load(),
		Frames:          e.stats.frames.Load(),
		DroppedMessages: e.stats.droppedMessages.Load(),
		DroppedNotes:    e.stats.droppedNotes.Load(),
		PatternFull:     e.stats.patternFull.Load(),
		BadTrack:        e.stats.badTrack.Load(),
		ScheduleDropped: e.stats.scheduleDropped.Load(),
		PendingDropped:  e.stats.pendingDropped.Load(),
	}
}

// OnNote registers fn for note notifications. nil removes it.
func (e *Engine) OnNote(fn func(NoteEvent)) {
	if fn == nil {
		e.noteObserver.Store(nil)
		return
	}

	e.noteObserver.Store(&fn)
}

// OnProgress registers fn for playback progress. nil removes it.
//
// Render only records the loop position; fn runs from Flush or Dispatch
// with the most recent value. Calling Flush after every Render therefore
// reports progress once per render call, while a slower caller sees only
// the latest position.
func (e *Engine) OnProgress(fn func(float64)) {
	if fn == nil {
		e.progressObserver.Store(nil)
		return
	}

	e.progressObserver.Store(&fn)
}

// Flush delivers queued note notifications and the latest progress to the
// observers on the calling goroutine and returns the number of notes.
func (e *Engine) Flush() int {
	n := 0

	for {
		select {
		case ev := <-e.outbox:
			e.emitNote(ev)
			n++
		default:
			e.emitProgress()
			return n
		}
	}
}

// Dispatch delivers notifications as they arrive and progress every
// interval until ctx is done. It also logs new drops at most once per
// interval. It returns ctx.Err().
func (e *Engine) Dispatch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := e.Stats()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-e.outbox:
			e.emitNote(ev)
		case <-ticker.C:
			e.emitProgress()

			now := e.Stats()
			if now.Drops() != last.Drops() {
				e.logger.Warn("engine dropped items",
					"messages", now.DroppedMessages-last.DroppedMessages,
					"notes", now.DroppedNotes-last.DroppedNotes,
					"pattern_full", now.PatternFull-last.PatternFull,
					"bad_track", now.BadTrack-last.BadTrack,
					"schedule", now.ScheduleDropped-last.ScheduleDropped,
					"pending", now.PendingDropped-last.PendingDropped)
			}

			last = now
		}
	}
}

func (e *Engine) emitNote(ev NoteEvent) {
	if fn := e.noteObserver.Load(); fn != nil {
		(*fn)(ev)
	}
}

func (e *Engine) emitProgress() {
	if fn := e.progressObserver.Load(); fn != nil {
		(*fn)(e.Progress())
	}
}
