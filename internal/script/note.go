package script

import (
	"fmt"
	"strconv"
	"strings"
)

var noteOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNote converts scientific pitch notation such as "C4", "F#2" or
// "Bb-1" to a MIDI pitch. C4 is 60.
func ParseNote(name string) (uint8, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("note %q: empty", name)
	}

	base, ok := noteOffsets[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("note %q: unknown letter", name)
	}

	s = s[1:]

	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			base++
		} else {
			base--
		}

		s = s[1:]
	}

	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("note %q: bad octave", name)
	}

	pitch := (octave+1)*12 + base
	if pitch < 0 || pitch > 127 {
		return 0, fmt.Errorf("note %q: pitch %d out of range", name, pitch)
	}

	return uint8(pitch), nil
}
