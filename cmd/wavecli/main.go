// Command wavecli is the batch entry point for wavecore: it loads a
// signal, runs one transform (FFT, MODWT, or CWT) against it, prints a
// one-line summary and, when -output is set, writes the result to a
// resultformat file. With
// -serve set and -transform=cwt, it instead blocks serving a live
// scalogram dashboard over the computed result.
//
// Usage:
//
//	wavecli [options] <input.aiff>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"wavecore/dsp"
	"wavecore/internal/aiff"
	"wavecore/internal/wavelettable"
	"wavecore/pkg/resultformat"
	"wavecore/web"
)

var (
	transformKind = flag.String("transform", "cwt", "Transform kind: fft, modwt, or cwt")
	waveletName   = flag.String("wavelet", "morlet", "Wavelet: morlet, mexicanhat (cwt); haar, db4 (modwt)")
	level         = flag.Int("level", 4, "MODWT decomposition level")
	scalesMin     = flag.Float64("scales-min", 1, "CWT minimum scale")
	scalesMax     = flag.Float64("scales-max", 64, "CWT maximum scale")
	scalesN       = flag.Int("scales-n", 32, "Number of CWT scales")
	method        = flag.String("method", "auto", "Convolution method for modwt: auto, direct, fft")
	output        = flag.String("output", "", "Write the result to this resultformat file (optional)")
	logFile       = flag.String("log", "", "Write structured logs to this file instead of stderr")
	servePort     = flag.Int("serve", 0, "Serve a live scalogram dashboard on this port after a cwt transform (0 = disabled)")
	openBrowser   = flag.Bool("open", false, "Open the dashboard in the default browser when -serve is set")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input.aiff>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	configureLogging()
	slog.Info("starting wavecli", "args", os.Args[1:])

	if err := run(flag.Arg(0)); err != nil {
		slog.Error("wavecli failed", "error", err)
		os.Exit(1)
	}
}

func configureLogging() {
	if *logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
}

func run(inputFile string) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	audio, err := aiff.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse signal: %w", err)
	}
	slog.Info("signal loaded", "channels", audio.NumChannels, "samples", audio.NumSamples, "rate", audio.SampleRate)

	signal := make([]float64, audio.NumSamples)
	for i, v := range audio.Data[0] {
		signal[i] = float64(v)
	}

	result, cwtResult, summary, err := runTransform(signal, audio.SampleRate)
	if err != nil {
		return err
	}
	fmt.Println(summary)

	if *output != "" {
		out, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()

		lib := resultformat.NewLibrary()
		lib.AddResult(result)
		if err := resultformat.WriteLibrary(out, lib); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		slog.Info("result written", "file", *output)
	}

	if *servePort > 0 {
		if cwtResult == nil {
			return fmt.Errorf("-serve requires -transform=cwt")
		}
		return serveDashboard(cwtResult)
	}

	return nil
}

// serveDashboard blocks, streaming cwtResult's scalogram to the web
// dashboard until the server exits or is interrupted.
func serveDashboard(cwtResult *dsp.CWTResult) error {
	srv := web.NewServer(cwtResult, *servePort)
	url := fmt.Sprintf("http://localhost:%d", *servePort)
	slog.Info("serving scalogram dashboard", "url", url)

	if *openBrowser {
		if err := web.OpenBrowser(url); err != nil {
			slog.Warn("failed to open browser", "error", err)
		}
	}

	return srv.Start()
}

func runTransform(signal []float64, samplingRate float64) (*resultformat.Result, *dsp.CWTResult, string, error) {
	switch *transformKind {
	case "fft":
		engine := dsp.NewFFTEngine()
		spectrum := engine.ForwardReal(signal)
		mag := make([]float32, len(spectrum)/2)
		for i := range mag {
			mag[i] = float32(dsp.Magnitude(complex(spectrum[2*i], spectrum[2*i+1])))
		}
		meta := resultformat.Metadata{Kind: resultformat.KindFFTSpectrum, Name: "fft"}
		result := resultformat.NewResult(meta, [][]float32{mag}, nil)
		return result, nil, fmt.Sprintf("FFT: %d bins", len(mag)), nil

	case "modwt":
		wavelet, err := lookupDiscreteWavelet(*waveletName)
		if err != nil {
			return nil, nil, "", err
		}
		engine := dsp.NewMODWTEngine(wavelet)
		engine.SetConvolutionMethod(lookupMethod(*method))
		coeffs, err := engine.Forward(signal, *level)
		if err != nil {
			return nil, nil, "", err
		}
		mag := make([][]float32, len(coeffs))
		for i, row := range coeffs {
			mag[i] = make([]float32, len(row))
			for j, v := range row {
				mag[i][j] = float32(v)
			}
		}
		meta := resultformat.Metadata{Kind: resultformat.KindMODWTGrid, Name: wavelet.Name()}
		result := resultformat.NewResult(meta, mag, nil)
		return result, nil, fmt.Sprintf("MODWT: %d rows x %d samples (%s)", len(coeffs), len(signal), wavelet.Name()), nil

	case "cwt":
		wavelet, err := lookupContinuousWavelet(*waveletName)
		if err != nil {
			return nil, nil, "", err
		}
		engine := dsp.NewCWTEngine(wavelet)
		scales, err := engine.GenerateLogScales(*scalesMin, *scalesMax, *scalesN)
		if err != nil {
			return nil, nil, "", err
		}
		cwtResult, err := engine.TransformFFT(signal, scales, samplingRate)
		if err != nil {
			return nil, nil, "", err
		}
		meta := resultformat.Metadata{
			Kind:         resultformat.KindCWTGrid,
			Name:         wavelet.Name(),
			SamplingRate: samplingRate,
			Scales:       scales,
		}
		result := resultformat.NewResult(meta, toFloat32Grid(cwtResult.Magnitude()), toFloat32Grid(cwtResult.Phase()))
		return result, cwtResult, fmt.Sprintf("CWT: %d scales x %d samples (%s)", len(scales), len(signal), wavelet.Name()), nil

	default:
		return nil, nil, "", fmt.Errorf("unknown transform kind %q", *transformKind)
	}
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

func lookupMethod(name string) dsp.ConvolutionMethod {
	switch name {
	case "direct":
		return dsp.Direct
	case "fft":
		return dsp.FFT
	default:
		return dsp.Auto
	}
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
