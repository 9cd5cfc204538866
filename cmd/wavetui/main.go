// Command wavetui is a termbox-go terminal viewer for a CWT scalogram
// computed from a loaded signal, adapted from the teacher's parameter
// browser loop to browse a coefficient grid instead of reverb parameters.
//
// Usage:
//
//	wavetui <input.aiff>
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	"wavecore/dsp"
	"wavecore/internal/aiff"
	"wavecore/internal/wavelettable"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colCyan   = termbox.ColorCyan
	colYellow = termbox.ColorYellow
)

// heatLevels maps a normalized magnitude in [0,1] to increasingly dense
// block glyphs, cheapest way to fake a color ramp on a basic terminal.
var heatLevels = []rune{' ', '░', '▒', '▓', '█'}

type tuiState struct {
	result     *dsp.CWTResult
	scaleIdx   int
	timeCursor int
	exit       bool
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.aiff>\n", os.Args[0])
		os.Exit(1)
	}

	result, err := loadScalogram(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := termbox.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize TUI: %v\n", err)
		os.Exit(1)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	state := &tuiState{result: result}
	runLoop(state)
}

func loadScalogram(path string) (*dsp.CWTResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	audio, err := aiff.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signal: %w", err)
	}

	signal := make([]float64, audio.NumSamples)
	for i, v := range audio.Data[0] {
		signal[i] = float64(v)
	}

	engine := dsp.NewCWTEngine(wavelettable.Morlet())
	scales, err := engine.GenerateLogScales(1, 64, 32)
	if err != nil {
		return nil, err
	}
	return engine.TransformFFT(signal, scales, audio.SampleRate)
}

func runLoop(s *tuiState) {
	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	draw(s)
	for !s.exit {
		select {
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, s)
			case termbox.EventResize:
				draw(s)
			}
		case <-ticker.C:
			draw(s)
		}
	}
}

func handleKey(ev termbox.Event, s *tuiState) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.exit = true
		return
	}

	nScales := s.result.NumberOfScales()
	nTimes := s.result.NumberOfTimePoints()

	switch ev.Key {
	case termbox.KeyArrowUp:
		if s.scaleIdx > 0 {
			s.scaleIdx--
		}
	case termbox.KeyArrowDown:
		if s.scaleIdx < nScales-1 {
			s.scaleIdx++
		}
	case termbox.KeyArrowLeft:
		if s.timeCursor > 0 {
			s.timeCursor--
		}
	case termbox.KeyArrowRight:
		if s.timeCursor < nTimes-1 {
			s.timeCursor++
		}
	}
}

func draw(s *tuiState) {
	_ = termbox.Clear(colDef, colDef)

	printTB(0, 0, colCyan, colDef, fmt.Sprintf("wavecore scalogram viewer - %s", s.result.WaveletName()))
	printTB(0, 1, colWhite, colDef, fmt.Sprintf("Scales: %d  Samples: %d  Rate: %.0f Hz",
		s.result.NumberOfScales(), s.result.NumberOfTimePoints(), s.result.SamplingRate()))
	printTB(0, 2, colDef, colDef, "Arrows to move cursor. 'q' or Esc to quit.")

	drawScalogram(s, 4)

	scales := s.result.Scales()
	freqs := s.result.ScaleToFrequency(1)
	w, h := termbox.Size()
	statusY := h - 1
	if s.scaleIdx < len(scales) {
		line := fmt.Sprintf("scale=%.2f freq~%.2fHz time=%d", scales[s.scaleIdx], freqs[s.scaleIdx], s.timeCursor)
		if len(line) > w {
			line = line[:w]
		}
		printTB(0, statusY, colYellow, colDef, line)
	}

	termbox.Flush()
}

// drawScalogram renders the magnitude grid as a block-character heat map,
// one terminal row per scale starting at y0, clamped to the terminal width.
func drawScalogram(s *tuiState, y0 int) {
	mag := s.result.Magnitude()
	if len(mag) == 0 {
		return
	}

	w, h := termbox.Size()
	maxRows := h - y0 - 2
	if maxRows <= 0 {
		return
	}

	maxVal := 0.0
	for _, row := range mag {
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	nScales := len(mag)
	nTimes := len(mag[0])
	cols := w
	if cols > nTimes {
		cols = nTimes
	}

	for r := 0; r < nScales && r < maxRows; r++ {
		for c := 0; c < cols; c++ {
			timeIdx := c * nTimes / cols
			level := mag[r][timeIdx] / maxVal
			glyph := heatLevels[int(level*float64(len(heatLevels)-1))]
			fg := colWhite
			if r == s.scaleIdx {
				fg = colYellow
			}
			termbox.SetCell(c, y0+r, glyph, fg, colDef)
		}
	}
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
