// Package effects provides the shared send effects of the synthesizer bus.
//
// Subpackages:
//   - github.com/cwbudde/algo-synth/dsp/effects/reverb
//
// Effects in this package:
//   - FeedbackDelay: feedback comb on an interpolated delay line with
//     smoothed time changes.
//   - Limiter: peak envelope limiter for the master output.
//
// Both run per sample without allocating and expose ProcessInPlace for
// block use.
package effects
