// Package osc provides stateful per-sample oscillators and noise sources for
// voices, plus block helpers that render test and measurement signals.
package osc
