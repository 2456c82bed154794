// Package host is the handle-based call boundary used by plugin and
// application hosts.
//
// Engines live in a fixed table of slots. Initialize returns a Handle that
// stays valid until Free. Calls that carry no handle (AddEvent,
// SetParameter, ClearEvents) address the most recently initialized engine.
// Once that engine is freed they fail with ErrInvalidHandle until the next
// Initialize.
//
// Continuous values cross the boundary as float32; pitch, velocity, track
// and parameter identifiers are clamped to 0..127. Render is wait-free and
// writes silence for an invalid handle. Observers never run inside Render:
// hosts call Poll from a non-audio thread to deliver them. Progress is
// delivered once per Poll with the most recent value, so polling after each
// Render yields one progress report per render call.
package host
