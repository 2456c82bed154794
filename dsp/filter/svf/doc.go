// Package svf provides a trapezoidal-integration (zero-delay feedback)
// state-variable filter and a one-pole smoother.
//
// The SVF follows the Cytomic/Simper formulation: two integrator states
// updated with trapezoidal integration, coefficients derived from cutoff and
// Q. Coefficients are recomputed only when cutoff or Q change, so per-sample
// processing is a handful of multiply-adds.
//
// Degenerate settings map to deterministic output:
//   - cutoff <= 0 produces silence
//   - cutoff above 0.49 x sample rate is clamped
//   - Q <= 0 is raised to a small positive minimum
package svf
