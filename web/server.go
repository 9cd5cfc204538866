package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wavecore/dsp"
)

// ErrUnsupportedPlatform is returned when browser opening is not supported.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

//go:embed static/*
var staticFiles embed.FS

// Message represents a WebSocket message.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatePayload describes the loaded transform result.
type StatePayload struct {
	Wavelet      string    `json:"wavelet"`
	Scales       []float64 `json:"scales"`
	SamplingRate float64   `json:"samplingRate"`
	TimePoints   int       `json:"timePoints"`
}

// FramePayload is one time-column of the scalogram: the magnitude at every
// scale for a single instant, streamed as the cursor advances.
type FramePayload struct {
	TimeIndex int       `json:"timeIndex"`
	Magnitude []float64 `json:"magnitude"`
}

// Server streams a CWTResult scalogram to connected browsers over
// WebSocket, frame by frame, adapted from the teacher's reverb-parameter
// dashboard.
type Server struct {
	port int
	hub  *Hub

	mu     sync.RWMutex
	result *dsp.CWTResult
	cursor int

	httpServer *http.Server
}

// NewServer creates a Server that will stream result's scalogram.
func NewServer(result *dsp.CWTResult, port int) *Server {
	return &Server{
		result: result,
		port:   port,
		hub:    NewHub(),
	}
}

// SetResult replaces the streamed result and resets the cursor, e.g. after
// the CLI recomputes the transform with different parameters.
func (s *Server) SetResult(result *dsp.CWTResult) {
	s.mu.Lock()
	s.result = result
	s.cursor = 0
	s.mu.Unlock()
}

// Start starts the web server and blocks until it exits.
func (s *Server) Start() error {
	go s.hub.Run()
	go s.frameBroadcastLoop()

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static file system: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/state", s.handleAPIState)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("web server starting", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

//nolint:gochecknoglobals // WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins for local development
	},
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	s.hub.register <- client

	s.sendState(client)

	go client.writePump()
	client.readPump(func(msg []byte) {
		s.handleClientMessage(msg)
	})
}

func (s *Server) sendState(client *Client) {
	s.mu.RLock()
	state := StatePayload{
		Wavelet:      s.result.WaveletName(),
		Scales:       s.result.Scales(),
		SamplingRate: s.result.SamplingRate(),
		TimePoints:   s.result.NumberOfTimePoints(),
	}
	s.mu.RUnlock()

	msg := Message{Type: "state", Payload: state}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal state", "error", err)
		return
	}
	client.send <- data
}

func (s *Server) handleClientMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Error("failed to parse websocket message", "error", err)
		return
	}

	if msg.Type == "set_cursor" {
		if payload, ok := msg.Payload.(map[string]interface{}); ok {
			if idx, ok := payload["timeIndex"].(float64); ok {
				s.mu.Lock()
				if int(idx) >= 0 && int(idx) < s.result.NumberOfTimePoints() {
					s.cursor = int(idx)
				}
				s.mu.Unlock()
			}
		}
	}
}

// frameBroadcastLoop advances the cursor and broadcasts one time-column of
// the scalogram every tick, mirroring the teacher's periodic meter
// broadcast.
func (s *Server) frameBroadcastLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if s.hub.ClientCount() == 0 {
			continue
		}

		s.mu.Lock()
		result := s.result
		nTimes := result.NumberOfTimePoints()
		if nTimes == 0 {
			s.mu.Unlock()
			continue
		}
		col, err := result.CoefficientsAtTime(s.cursor)
		if err != nil {
			s.mu.Unlock()
			continue
		}
		frame := FramePayload{TimeIndex: s.cursor, Magnitude: magnitudeOf(col)}
		s.cursor = (s.cursor + 1) % nTimes
		s.mu.Unlock()

		msg := Message{Type: "frame", Payload: frame}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.hub.Broadcast(data)
	}
}

func magnitudeOf(col []dsp.Complex) []float64 {
	out := make([]float64, len(col))
	for i, c := range col {
		out[i] = dsp.Magnitude(c)
	}
	return out
}

func (s *Server) handleAPIState(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	state := StatePayload{
		Wavelet:      s.result.WaveletName(),
		Scales:       s.result.Scales(),
		SamplingRate: s.result.SamplingRate(),
		TimePoints:   s.result.NumberOfTimePoints(),
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	//nolint:errchkjson // StatePayload is a well-defined struct
	_ = json.NewEncoder(w).Encode(state)
}

// OpenBrowser opens the default browser to the specified URL.
func OpenBrowser(url string) error {
	ctx := context.Background()
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", url)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}

	return cmd.Start()
}
