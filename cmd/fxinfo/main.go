// Command fxinfo prints measured magnitude responses of the synth's DSP
// building blocks and voices.
//
// Usage:
//
//	fxinfo [flags] [name ...]
//
// Without arguments it measures every known processor.
//
// Examples:
//
//	fxinfo svf-lp svf-hp
//	fxinfo -cutoff 500 -q 4 svf-bp
//	fxinfo -pitch 45 kick pluck
//	fxinfo -band 6 svf-bp
//	fxinfo -list
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/effects"
	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/dsp/filter/svf"
	"github.com/cwbudde/algo-synth/dsp/window"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/measure/response"
)

type params struct {
	sampleRate float64
	size       int
	cutoff     float64
	q          float64
	pitch      uint8
	// bandDB is the drop below the peak that bounds the reported band.
	bandDB float64
}

// measureFunc produces the response of one processor.
type measureFunc func(p params) (response.Response, error)

type entry struct {
	name    string
	desc    string
	measure measureFunc
}

var registry = []entry{
	{"svf-lp", "state-variable filter, low-pass output", svfOutput(0)},
	{"svf-bp", "state-variable filter, band-pass output", svfOutput(1)},
	{"svf-hp", "state-variable filter, high-pass output", svfOutput(2)},
	{"onepole", "one-pole smoother at -cutoff", measureOnePole},
	{"delay", "feedback delay, 10 ms at feedback 0.5", measureDelay},
	{"reverb", "FDN reverb, wet only", measureReverb},
	{"kick", "kick voice at -pitch", voice(instrument.KindKick)},
	{"subtractive", "subtractive voice at -pitch", voice(instrument.KindSubtractive)},
	{"pluck", "plucked string voice at -pitch", voice(instrument.KindPluck)},
}

var probes = []float64{100, 1000, 10000}

func main() {
	sampleRate := flag.Float64("sr", 48000, "sample rate in Hz")
	size := flag.Int("size", 8192, "FFT size (power of two)")
	cutoff := flag.Float64("cutoff", 1000, "filter cutoff in Hz")
	q := flag.Float64("q", 0.707, "filter resonance")
	pitch := flag.Int("pitch", 57, "MIDI pitch for voices")
	bandDB := flag.Float64("band", 3, "band edges in dB below the peak")
	list := flag.Bool("list", false, "list available processor names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxinfo [flags] [name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints measured magnitude responses of DSP processors and voices.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, measures every processor.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fxinfo svf-lp svf-hp\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -cutoff 500 -q 4 svf-bp\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -list\n")
	}
	flag.Parse()

	if *list {
		printList()
		return
	}

	if *pitch < 0 || *pitch > 127 {
		fmt.Fprintf(os.Stderr, "error: pitch must be in [0,127]: %d\n", *pitch)
		os.Exit(1)
	}

	entries := resolveEntries(flag.Args())
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "error: no matching processors\n")
		os.Exit(1)
	}

	printAnalysis(entries, params{
		sampleRate: *sampleRate,
		size:       *size,
		cutoff:     *cutoff,
		q:          *q,
		pitch:      uint8(*pitch),
		bandDB:     *bandDB,
	})
}

func printList() {
	sorted := append([]entry(nil), registry...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	for _, e := range sorted {
		fmt.Printf("%-12s %s\n", e.name, e.desc)
	}
}

func resolveEntries(names []string) []entry {
	if len(names) == 0 {
		return registry
	}

	byName := make(map[string]entry, len(registry))
	for _, e := range registry {
		byName[e.name] = e
	}

	var result []entry
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		e, ok := byName[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: unknown processor %q (use -list to see available)\n", name)
			continue
		}
		result = append(result, e)
	}
	return result
}

func printAnalysis(entries []entry, p params) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Processor\tPeak [Hz]\tNote\tPeak [dB]\t-%g dB band [Hz]\t100 Hz [dB]\t1 kHz [dB]\t10 kHz [dB]\n", p.bandDB); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "---------\t---------\t----\t---------\t---------------\t-----------\t----------\t-----------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, e := range entries {
		r, err := e.measure(p)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %s: %v\n", e.name, err)
			continue
		}

		freq, mag := r.Peak()
		lo, hi := band(r, p.bandDB)
		row := fmt.Sprintf("%s\t%.1f\t%s\t%.2f\t%.0f-%.0f",
			e.name, freq, noteName(core.FreqToPitch(freq)), core.LinearToDB(mag), lo, hi)
		for _, f := range probes {
			row += fmt.Sprintf("\t%.2f", r.AtDB(f))
		}

		if _, err := fmt.Fprintln(tw, row); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteName spells a MIDI pitch with C4 = 60.
func noteName(pitch uint8) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], int(pitch)/12-1)
}

// band returns the edges of the contiguous region around the peak bin that
// stays within dropDB of the peak.
func band(r response.Response, dropDB float64) (lo, hi float64) {
	if len(r.Magnitude) == 0 {
		return 0, 0
	}

	peak := 0
	for i, m := range r.Magnitude {
		if m > r.Magnitude[peak] {
			peak = i
		}
	}

	floor := r.Magnitude[peak] * core.DBToLinear(-math.Abs(dropDB))

	first, last := peak, peak
	for first > 0 && r.Magnitude[first-1] >= floor {
		first--
	}
	for last < len(r.Magnitude)-1 && r.Magnitude[last+1] >= floor {
		last++
	}

	return float64(first) * r.BinHz(), float64(last) * r.BinHz()
}

func svfOutput(tap int) measureFunc {
	return func(p params) (response.Response, error) {
		f, err := svf.New(p.sampleRate, svf.WithCutoffHz(p.cutoff), svf.WithQ(p.q))
		if err != nil {
			return response.Response{}, err
		}
		return response.Measure(response.ProcessorFunc(func(x float64) float64 {
			lp, bp, hp := f.ProcessMulti(x)
			return [3]float64{lp, bp, hp}[tap]
		}), p.sampleRate, p.size)
	}
}

func measureOnePole(p params) (response.Response, error) {
	f, err := svf.NewOnePole(p.sampleRate, p.cutoff)
	if err != nil {
		return response.Response{}, err
	}
	return response.Measure(response.ProcessorFunc(f.Process), p.sampleRate, p.size)
}

func measureDelay(p params) (response.Response, error) {
	d, err := effects.NewFeedbackDelay(p.sampleRate,
		effects.WithMaxDelayTime(0.1),
		effects.WithDelayTime(0.01),
		effects.WithDelayFeedback(0.5))
	if err != nil {
		return response.Response{}, err
	}
	return response.Measure(d, p.sampleRate, p.size)
}

func measureReverb(p params) (response.Response, error) {
	r, err := reverb.NewFDNReverb(p.sampleRate, reverb.WithMix(0, 1))
	if err != nil {
		return response.Response{}, err
	}
	return response.Measure(r, p.sampleRate, p.size)
}

func voice(k instrument.Kind) measureFunc {
	return func(p params) (response.Response, error) {
		v, err := instrument.NewVoice(k, p.sampleRate, 1)
		if err != nil {
			return response.Response{}, err
		}
		v.Trigger(p.pitch, 127, 0.5, 0.5)
		x := make([]float64, p.size)
		for i := range x {
			x[i] = v.Process()
		}
		return response.FromSignal(x, p.sampleRate, window.TypeHann)
	}
}
