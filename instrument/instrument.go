package instrument

import (
	"fmt"
	"strings"
)

// Kind selects a voice implementation.
type Kind int

const (
	KindKick Kind = iota
	KindSubtractive
	KindPluck
)

var kindNames = map[Kind]string{
	KindKick:        "kick",
	KindSubtractive: "subtractive",
	KindPluck:       "pluck",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind looks a kind up by its String name.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("instrument: unknown kind %q", name)
}

// Params returns the parameter table of k. The slice must not be modified.
func (k Kind) Params() []ParamInfo {
	switch k {
	case KindKick:
		return kickParams
	case KindSubtractive:
		return subtractiveParams
	case KindPluck:
		return pluckParams
	default:
		return nil
	}
}

// NewVoice builds one voice of kind k. seed only affects noise-based voices.
func NewVoice(k Kind, sampleRate float64, seed int64) (Voice, error) {
	var (
		v   Voice
		err error
	)

	switch k {
	case KindKick:
		v, err = NewKick(sampleRate, seed)
	case KindSubtractive:
		v, err = NewSubtractive(sampleRate)
	case KindPluck:
		v, err = NewPluck(sampleRate, seed)
	default:
		return nil, fmt.Errorf("instrument: unknown kind %d", int(k))
	}

	if err != nil {
		return nil, err
	}

	return v, nil
}

// New builds a pool of polyphony voices of kind k.
func New(k Kind, sampleRate float64, polyphony int, opts ...PoolOption) (*Pool, error) {
	if polyphony <= 0 {
		return nil, fmt.Errorf("instrument polyphony must be > 0: %d", polyphony)
	}

	voices := make([]Voice, polyphony)
	for i := range voices {
		v, err := NewVoice(k, sampleRate, int64(i+1))
		if err != nil {
			return nil, fmt.Errorf("instrument %s voice %d: %w", k, i, err)
		}

		voices[i] = v
	}

	p, err := NewPool(voices, opts...)
	if err != nil {
		return nil, err
	}

	for _, info := range k.Params() {
		p.params[info.ID] = info.Default
	}

	return p, nil
}
