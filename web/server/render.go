package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-realtime-pathtracer/pkg/controls"
	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/renderer"
)

// FrameUpdate represents a single rendered frame sent via SSE
type FrameUpdate struct {
	Frame          uint32            `json:"frame"`
	Index          int               `json:"index"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	ImageData      string            `json:"imageData"` // Base64 encoded PNG
	DurationMs     int64             `json:"durationMs"`
	ElapsedMs      int64             `json:"elapsedMs"`
	TotalSamples   int               `json:"totalSamples"`
	AverageSamples float64           `json:"averageSamples"`
	Luminance      float64           `json:"luminance"`
	FPS            renderer.FPSStats `json:"fps"`
	Pose           controls.Pose     `json:"pose"`
	Settings       controls.Settings `json:"settings"`
	IsLast         bool              `json:"isLast"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "session", "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// turningSource drags the camera by a fixed amount before every frame
type turningSource struct {
	controller *controls.Controller
	dx, dy     float64
}

func (t turningSource) NextFrame(width, height int) renderer.FrameConfig {
	if t.dx != 0 || t.dy != 0 {
		t.controller.Drag(t.dx, t.dy)
	}
	return t.controller.NextFrame(width, height)
}

// handleFrame renders a single frame and returns it as a PNG. Held keys
// move the camera once before the frame, like every frame of a session.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	raytracer := renderer.NewRaytracer(req.Scene, renderer.DefaultRenderConfig(), renderer.NewDefaultLogger())
	defer raytracer.Close()

	cfg := req.Controller.NextFrame(req.Width, req.Height)
	img, stats, err := raytracer.RenderFrame(cfg)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Render failed: "+err.Error())
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to encode image: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Frame", strconv.FormatUint(uint64(cfg.Frame), 10))
	w.Header().Set("X-Camera-Position", fmt.Sprintf("%g,%g,%g", cfg.Position.X, cfg.Position.Y, cfg.Position.Z))
	w.Header().Set("X-Render-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing frame: %v", err)
	}
}

// handleRender streams frames of an interactive session via SSE. Held keys
// and the turn rate apply before every frame. The first event names the
// session, which accepts live input through /api/session/input.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})

	// Start single SSE writer goroutine
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	// Parse and validate request
	req, err := s.parseFrameRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	query := r.URL.Query()
	maxFrames, err := parseIntParam(query, "frames", 60, 0, MaxFrames)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	turnX, err := parseFloatParam(query, "turnX", 0, -1000, 1000)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	turnY, err := parseFloatParam(query, "turnY", 0, -1000, 1000)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sessionID := s.sessions.add(req.Controller)
	defer s.sessions.remove(sessionID)
	if data, err := json.Marshal(SessionInfo{ID: sessionID}); err == nil {
		select {
		case sseEventChan <- SSEEvent{Type: "session", Data: string(data)}:
		case <-ctx.Done():
			return
		}
	}

	// Setup console logging and streaming. The streamer stops before the
	// event channel is closed.
	consoleChan, webLogger := s.setupConsoleLogging(sessionID)
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()
	defer func() {
		stopConsole()
		<-consoleDone
	}()

	raytracer := renderer.NewRaytracer(req.Scene, renderer.DefaultRenderConfig(), webLogger)
	defer raytracer.Close()

	webLogger.Printf("Rendering scene %q: %d primitives, %d emitters\n",
		req.Scene.Name, req.Scene.GetPrimitiveCount(), req.Scene.CountEmitters())

	source := turningSource{controller: req.Controller, dx: turnX, dy: turnY}
	loop := renderer.NewFrameLoop(raytracer, source, renderer.LoopOptions{
		Width:     req.Width,
		Height:    req.Height,
		MaxFrames: maxFrames,
	}, webLogger)

	startTime := time.Now()
	frameChan, errChan := loop.Run(ctx)
	s.handleRenderingEvents(ctx, sseEventChan, frameChan, errChan, req.Controller, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a session
func (s *Server) setupConsoleLogging(sessionID string) (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	return consoleChan, NewWebLogger(sessionID, consoleChan)
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Write SSE event
			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages handles the console message streaming goroutine
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			// Send to unified SSE channel
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			// Client disconnected or render finished
			return
		}
	}
}

// handleRenderingEvents forwards frames from the loop until it ends
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	frameChan <-chan renderer.FrameResult, errChan <-chan error,
	controller *controls.Controller, startTime time.Time) {

	for result := range frameChan {
		s.handleFrameComplete(ctx, sseEventChan, result, controller, startTime)
	}

	if err := <-errChan; err != nil {
		if ctx.Err() != nil {
			// Client disconnected
			return
		}
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	// Send completion event
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handleFrameComplete encodes and sends one frame event
func (s *Server) handleFrameComplete(ctx context.Context, sseEventChan chan SSEEvent, result renderer.FrameResult,
	controller *controls.Controller, startTime time.Time) {
	// Check if client is still connected
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := s.imageToBase64PNG(result.Image)
	if err != nil {
		log.Printf("Error encoding frame %d: %v", result.Config.Frame, err)
		return
	}

	update := FrameUpdate{
		Frame:          result.Config.Frame,
		Index:          result.Index,
		Width:          result.Config.Width,
		Height:         result.Config.Height,
		ImageData:      imageData,
		DurationMs:     result.Duration.Milliseconds(),
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalSamples:   result.Stats.TotalSamples,
		AverageSamples: result.Stats.AverageSamples,
		Luminance:      result.Stats.AverageLuminance,
		FPS:            result.FPS,
		Pose: controls.Pose{
			Position: result.Config.Position,
			Yaw:      result.Config.Yaw,
			Pitch:    result.Config.Pitch,
		},
		Settings: controller.Settings(),
		IsLast:   result.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(data)}:
	case <-ctx.Done():
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
