// Package envelope provides an attack/decay envelope generator for
// percussive and plucked voices.
//
// The AR envelope is a three-state machine:
//
//	Off --Trigger--> Attack --(attack done)--> Decay --(decay done)--> Off
//
// Trigger restarts the attack from any state. Stage lengths are measured in
// samples (milliseconds x sample rate / 1000) and transitions happen when the
// stage time reaches its length, independent of the velocity-scaled peak.
package envelope
