package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-kick/internal/render"
	"github.com/cwbudde/algo-kick/measure/spectral"
	"github.com/cwbudde/algo-kick/preset"
	timestats "github.com/cwbudde/algo-kick/stats/time"
)

const decayThresholdDB = -60

func printList(w io.Writer, bank preset.Bank) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Preset\tLength [ms]\tPitch [Hz]\tDecay\tHarm\tDrive\tClick\tBody\tDescription\n")
	fmt.Fprintf(tw, "------\t-----------\t----------\t-----\t----\t-----\t-----\t----\t-----------\n")
	for _, p := range bank.Presets {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%g\t%g\t%g\t%s\n",
			p.Name, p.LengthMS, p.PitchStartHz, p.PitchDecay,
			p.Harmonics, p.Drive, p.ClickLevel, p.BodyLevel, p.Description)
	}
	fmt.Fprintf(tw, "\nParameter\tFlag key\tMin\tMax\tStep\tDefault\n")
	fmt.Fprintf(tw, "---------\t--------\t---\t---\t----\t-------\n")
	for _, r := range preset.Ranges() {
		label := r.Label
		if r.Unit != "" {
			label += " [" + r.Unit + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\n", label, r.Key, r.Min, r.Max, r.Step, r.Default)
	}
	return tw.Flush()
}

func printResults(w io.Writer, results []render.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Preset\tSamples\tRate [Hz]\tElapsed\tFile\n")
	fmt.Fprintf(tw, "------\t-------\t---------\t-------\t----\n")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%s\n", r.Name, len(r.Samples), r.Params.SampleRate, r.Elapsed, r.Path)
	}
	return tw.Flush()
}

// printAnalysis writes the time-domain and spectral report for one signal.
func printAnalysis(w io.Writer, label string, signal []float64, sampleRate int) error {
	st := timestats.Calculate(signal)
	decay, err := timestats.DecayTime(signal, float64(sampleRate), decayThresholdDB)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", label, err)
	}

	an, err := spectral.New(spectral.Config{SampleRate: float64(sampleRate)})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", label, err)
	}
	res, err := an.Analyze(signal)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", label, err)
	}
	win, err := an.Window()
	if err != nil {
		return fmt.Errorf("analyze %s: %w", label, err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t\n", label)
	fmt.Fprintf(tw, "  Samples\t%d\n", st.Length)
	fmt.Fprintf(tw, "  Duration [ms]\t%.2f\n", 1000*float64(st.Length)/float64(sampleRate))
	fmt.Fprintf(tw, "  Peak [dBFS]\t%.2f\n", st.Peak_dB)
	fmt.Fprintf(tw, "  RMS [dBFS]\t%.2f\n", st.RMS_dB)
	fmt.Fprintf(tw, "  Crest factor [dB]\t%.2f\n", st.CrestFactor_dB)
	fmt.Fprintf(tw, "  DC\t%.5f\n", st.DC)
	fmt.Fprintf(tw, "  Decay to %d dB [ms]\t%.1f\n", decayThresholdDB, 1000*decay)
	fmt.Fprintf(tw, "  Dominant [Hz]\t%.1f (%.1f dB)\n", res.DominantFreq, res.DominantLevelDB)
	fmt.Fprintf(tw, "  Centroid [Hz]\t%.1f\n", res.Centroid)
	fmt.Fprintf(tw, "  Click band [dBFS]\t%.1f\n", res.ClickLevelDB)
	if n := len(res.PitchTrack); n > 0 {
		first, last := res.PitchTrack[0], res.PitchTrack[n-1]
		fmt.Fprintf(tw, "  Pitch track [Hz]\t%.1f -> %.1f over %d frames\n", first.Freq, last.Freq, n)
	}
	fmt.Fprintf(tw, "  Window\t%s, ENBW %.2f bins (%.1f Hz), sidelobes %.1f dB\n",
		win.Name, win.ENBW, win.ENBWHz, win.HighestSidelobe)
	return tw.Flush()
}
