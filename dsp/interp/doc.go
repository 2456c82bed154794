// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [None]:     nearest stored sample, no interpolation
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (Catmull-Rom), exact at integral positions
//
// The [Mode] enum selects the algorithm at construction time of a
// [github.com/cwbudde/algo-synth/dsp/delay.Line].
package interp
