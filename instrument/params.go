package instrument

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Param identifies a generator control. Values are normalized to [0, 1].
type Param uint8

const (
	ParamCutoff Param = iota
	ParamResonance
	ParamAttack
	ParamDecay
	ParamTone
	ParamDamping
	ParamPitchEnv
	ParamClick

	paramCount
)

var paramNames = [paramCount]string{
	ParamCutoff:    "cutoff",
	ParamResonance: "resonance",
	ParamAttack:    "attack",
	ParamDecay:     "decay",
	ParamTone:      "tone",
	ParamDamping:   "damping",
	ParamPitchEnv:  "pitch_env",
	ParamClick:     "click",
}

func (p Param) String() string {
	if p < paramCount {
		return paramNames[p]
	}

	return fmt.Sprintf("param(%d)", uint8(p))
}

// ParseParam looks a parameter up by its String name.
func ParseParam(name string) (Param, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range paramNames {
		if n == name {
			return Param(i), nil
		}
	}

	return 0, fmt.Errorf("instrument: unknown parameter %q", name)
}

// ParamInfo describes one entry of an instrument's parameter table.
type ParamInfo struct {
	ID      Param
	Default float64
	// Unit is the unit of the mapped value, for display.
	Unit string
	// Map converts the normalized value to Unit.
	Map func(v float64) float64
}

// Name returns the parameter name.
func (i ParamInfo) Name() string { return i.ID.String() }

func cutoffHz(v float64) float64 { return core.ScaleLog(v, 20, 20000) }

func resonanceQ(v float64) float64 { return core.LinToLog(core.ClampUnit(v), 0, 1, 0.5, 20) }

// attackMs is quadratic so the lower half of the control covers short
// attacks.
func attackMs(v float64) float64 {
	v = core.ClampUnit(v)

	return v * v * 2000
}

func decayMs(v float64) float64 { return core.ScaleLog(v, 10, 10000) }

// noteParam moves a track value toward 1 by a per-note amount, so a note
// amount of 0 plays the track value unchanged.
func noteParam(track, note float64) float64 {
	track = core.ClampUnit(track)

	return track + core.ClampUnit(note)*(1-track)
}

func identity(v float64) float64 { return core.ClampUnit(v) }

func pitchSweepHz(v float64) float64 { return core.ClampUnit(v) * maxPitchSweepHz }

var (
	kickParams = []ParamInfo{
		{ID: ParamPitchEnv, Default: 0.25, Unit: "Hz", Map: pitchSweepHz},
		{ID: ParamClick, Default: 0.3, Map: identity},
		{ID: ParamDecay, Default: 0.6, Unit: "ms", Map: decayMs},
	}
	subtractiveParams = []ParamInfo{
		{ID: ParamCutoff, Default: 0.6, Unit: "Hz", Map: cutoffHz},
		{ID: ParamResonance, Default: 0.1, Map: resonanceQ},
		{ID: ParamAttack, Default: 0, Unit: "ms", Map: attackMs},
		{ID: ParamDecay, Default: 0.5, Unit: "ms", Map: decayMs},
	}
	pluckParams = []ParamInfo{
		{ID: ParamTone, Default: 0.5, Map: identity},
		{ID: ParamDamping, Default: 0.5, Map: identity},
		{ID: ParamDecay, Default: 0.7, Unit: "ms", Map: decayMs},
	}
)
