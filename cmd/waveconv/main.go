// Command waveconv converts a single AIFF signal file into a persisted
// transform result file.
//
// Usage:
//
//	waveconv [options] <input.aiff> <output.wcrf>
//
// Options:
//
//	-transform     Transform kind: fft, modwt, or cwt (default "cwt")
//	-wavelet       Wavelet: morlet, mexicanhat, haar, db4 (default "morlet")
//	-level         MODWT decomposition level (default 4)
//	-scales-min    CWT minimum scale (default 1)
//	-scales-max    CWT maximum scale (default 64)
//	-scales-n      Number of CWT scales (default 32)
//	-scales-linear Use linearly spaced CWT scales instead of log spaced
//	-resample      Resample the signal to this rate before transforming (0 = no resample)
//	-channel       Channel index to transform (default 0)
//	-verbose       Show progress and details
package main

import (
	"flag"
	"fmt"
	"os"

	"wavecore/dsp"
	"wavecore/internal/aiff"
	"wavecore/internal/wavelettable"
	"wavecore/pkg/resampler"
	"wavecore/pkg/resultformat"
)

var (
	transformKind = flag.String("transform", "cwt", "Transform kind: fft, modwt, or cwt")
	waveletName   = flag.String("wavelet", "morlet", "Wavelet: morlet, mexicanhat, haar, db4")
	level         = flag.Int("level", 4, "MODWT decomposition level")
	scalesMin     = flag.Float64("scales-min", 1, "CWT minimum scale")
	scalesMax     = flag.Float64("scales-max", 64, "CWT maximum scale")
	scalesN       = flag.Int("scales-n", 32, "Number of CWT scales")
	scalesLinear  = flag.Bool("scales-linear", false, "Use linearly spaced CWT scales instead of log spaced")
	resampleRate  = flag.Float64("resample", 0, "Resample the signal to this rate before transforming (0 = no resample)")
	channel       = flag.Int("channel", 0, "Channel index to transform")
	verbose       = flag.Bool("verbose", false, "Show progress and details")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input.aiff> <output.wcrf>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Converts an AIFF signal file into a persisted transform result file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile, outputFile string) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	audio, err := aiff.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse signal: %w", err)
	}
	if *channel < 0 || *channel >= audio.NumChannels {
		return fmt.Errorf("channel %d out of range (file has %d channels)", *channel, audio.NumChannels)
	}

	samplingRate := audio.SampleRate
	samples32 := audio.Data[*channel]
	if *resampleRate > 0 && *resampleRate != samplingRate {
		if *verbose {
			fmt.Printf("Resampling %.0f Hz -> %.0f Hz\n", samplingRate, *resampleRate)
		}
		r := resampler.New()
		samples32, err = r.Resample(samples32, samplingRate, *resampleRate)
		if err != nil {
			return fmt.Errorf("failed to resample: %w", err)
		}
		samplingRate = *resampleRate
	}

	signal := make([]float64, len(samples32))
	for i, v := range samples32 {
		signal[i] = float64(v)
	}

	if *verbose {
		fmt.Printf("Loaded %d samples at %.0f Hz\n", len(signal), samplingRate)
	}

	result, err := computeResult(signal, samplingRate)
	if err != nil {
		return fmt.Errorf("failed to compute transform: %w", err)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	lib := resultformat.NewLibrary()
	lib.AddResult(result)
	if err := resultformat.WriteLibrary(out, lib); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}

	if *verbose {
		fmt.Printf("Wrote %s: %s, %d x %d\n", outputFile, *transformKind, result.Metadata.Rows, result.Metadata.Cols)
	}
	return nil
}

func computeResult(signal []float64, samplingRate float64) (*resultformat.Result, error) {
	switch *transformKind {
	case "fft":
		return computeFFT(signal)
	case "modwt":
		return computeMODWT(signal)
	case "cwt":
		return computeCWT(signal, samplingRate)
	default:
		return nil, fmt.Errorf("unknown transform kind %q", *transformKind)
	}
}

func computeFFT(signal []float64) (*resultformat.Result, error) {
	engine := dsp.NewFFTEngine()
	spectrum := engine.ForwardReal(signal)
	mag := make([]float32, len(spectrum)/2)
	for i := range mag {
		c := complex(spectrum[2*i], spectrum[2*i+1])
		mag[i] = float32(dsp.Magnitude(c))
	}
	meta := resultformat.Metadata{Kind: resultformat.KindFFTSpectrum, Name: "fft"}
	return resultformat.NewResult(meta, [][]float32{mag}, nil), nil
}

func computeMODWT(signal []float64) (*resultformat.Result, error) {
	wavelet, err := lookupDiscreteWavelet(*waveletName)
	if err != nil {
		return nil, err
	}
	engine := dsp.NewMODWTEngine(wavelet)
	coeffs, err := engine.Forward(signal, *level)
	if err != nil {
		return nil, err
	}
	mag := make([][]float32, len(coeffs))
	for i, row := range coeffs {
		mag[i] = make([]float32, len(row))
		for j, v := range row {
			mag[i][j] = float32(v)
		}
	}
	meta := resultformat.Metadata{Kind: resultformat.KindMODWTGrid, Name: wavelet.Name()}
	return resultformat.NewResult(meta, mag, nil), nil
}

func computeCWT(signal []float64, samplingRate float64) (*resultformat.Result, error) {
	wavelet, err := lookupContinuousWavelet(*waveletName)
	if err != nil {
		return nil, err
	}
	engine := dsp.NewCWTEngine(wavelet)

	var scales []float64
	if *scalesLinear {
		scales, err = engine.GenerateLinearScales(*scalesMin, *scalesMax, *scalesN)
	} else {
		scales, err = engine.GenerateLogScales(*scalesMin, *scalesMax, *scalesN)
	}
	if err != nil {
		return nil, err
	}

	result, err := engine.TransformFFT(signal, scales, samplingRate)
	if err != nil {
		return nil, err
	}

	magnitude := result.Magnitude()
	phaseF := result.Phase()
	mag := toFloat32Grid(magnitude)
	phase := toFloat32Grid(phaseF)

	meta := resultformat.Metadata{
		Kind:         resultformat.KindCWTGrid,
		Name:         wavelet.Name(),
		SamplingRate: samplingRate,
		Scales:       scales,
	}
	return resultformat.NewResult(meta, mag, phase), nil
}

func toFloat32Grid(grid [][]float64) [][]float32 {
	out := make([][]float32, len(grid))
	for i, row := range grid {
		out[i] = make([]float32, len(row))
		for j, v := range row {
			out[i][j] = float32(v)
		}
	}
	return out
}

func lookupDiscreteWavelet(name string) (dsp.DiscreteWavelet, error) {
	switch name {
	case "haar":
		return wavelettable.Haar(), nil
	case "db4":
		return wavelettable.Daubechies4(), nil
	default:
		return nil, fmt.Errorf("unknown discrete wavelet %q (want haar or db4)", name)
	}
}

func lookupContinuousWavelet(name string) (dsp.ContinuousWavelet, error) {
	switch name {
	case "morlet":
		return wavelettable.Morlet(), nil
	case "mexicanhat":
		return wavelettable.MexicanHat(), nil
	default:
		return nil, fmt.Errorf("unknown continuous wavelet %q (want morlet or mexicanhat)", name)
	}
}
