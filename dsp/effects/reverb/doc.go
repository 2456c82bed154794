// Package reverb provides a dense feedback-delay-network reverberator.
//
// FDNReverb diffuses its input through a series of Schroeder allpass stages,
// then feeds 32 parallel delay paths whose outputs are mixed through a
// Householder reflection before being fed back. Each path has a random
// length, a random polarity and an in-loop SVF low-pass for damping. The
// random layout is drawn once at construction from a configurable seed.
package reverb
