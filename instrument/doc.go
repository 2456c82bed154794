// Package instrument defines the sound-generator contract used by the engine
// and provides polyphonic voice pools with three voice implementations:
// Subtractive (saw, state-variable low-pass, AR envelope), Pluck
// (Karplus-Strong string on an interpolated delay line) and Kick (swept sine
// with a noise click).
//
// A Pool owns a fixed set of voices allocated at construction. NoteOn picks
// a free voice in round-robin order; when every voice is sounding it steals
// the quietest released voice, or failing that the oldest triggered one.
// No method allocates after construction.
package instrument
