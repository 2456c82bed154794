// Package sequencer maps a looping, beat-indexed pattern onto sample-accurate
// note events.
//
// A Sequencer owns a Pattern of Events. Each call to Process covers one
// render block [sampleTime, sampleTime+frames) and fills a Schedule with
// NoteOn and NoteOff entries at their offsets inside the block, ordered by
// offset. NoteOffs that fall beyond the block are kept as pending entries and
// delivered when the loop position reaches them, including across the loop
// seam.
//
// All storage is allocated at construction. Process, FlushPending, Add and
// Clear never allocate, so the sequencer can run on a real-time thread.
package sequencer
