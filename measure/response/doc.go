// Package response measures the magnitude response of per-sample processors
// by recording their impulse response and transforming it with an FFT.
//
// It backs the filter and reverb validation tests and the fxinfo command.
package response
