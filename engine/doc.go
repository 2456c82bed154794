// Package engine is the real-time core of the synthesizer.
//
// An Engine owns a Sequencer, one Generator per track and the shared delay
// and reverb sends. Producers on any goroutine post Messages with Send or
// the typed helpers; Render drains them once per call, schedules the block
// and renders it sample-accurately.
//
// Render never blocks, allocates or takes a lock. Note notifications leave
// the render path through a bounded channel and playback progress through an
// atomic; Flush and Dispatch deliver both to the registered observers on the
// caller's goroutine.
package engine
