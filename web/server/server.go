package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-realtime-pathtracer/pkg/controls"
	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

const (
	DefaultScene  = "default"
	DefaultWidth  = 400
	DefaultHeight = 225
	MinImageSize  = 16
	MaxImageSize  = 2000
	MaxFrames     = 10000
)

// Server handles web requests for the real-time path tracer
type Server struct {
	port      int
	staticDir string
	sessions  *sessionRegistry
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, staticDir: "static/", sessions: newSessionRegistry()}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/session/input", s.handleSessionInput)

	return mux
}

// NewServerWithStatic creates a web server serving the front-end from staticDir
func NewServerWithStatic(port int, staticDir string) *Server {
	srv := NewServer(port)
	srv.staticDir = staticDir
	return srv
}

// Start starts the web server and blocks until it fails
func (s *Server) Start() error {
	return s.Run(context.Background())
}

// Run serves until ctx is cancelled, then shuts down. Running render streams
// end with their clients' requests.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	log.Printf("Starting web server on http://%s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("Web server stopped")
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// SceneConfigResponse describes a scene's initial view and the control limits
type SceneConfigResponse struct {
	Scene      string            `json:"scene"`
	Primitives int               `json:"primitives"`
	Emitters   int               `json:"emitters"`
	Settings   controls.Settings `json:"defaults"`
	Pose       controls.Pose     `json:"pose"`
	Limits     controls.Limits   `json:"limits"`
	Image      ImageLimits       `json:"image"`
}

// ImageLimits are the accepted image sizes
type ImageLimits struct {
	Width  controls.Range `json:"width"`
	Height controls.Range `json:"height"`
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = DefaultScene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	controller := controls.NewControllerForScene(sceneObj.Defaults)
	size := controls.Range{Min: MinImageSize, Max: MaxImageSize}
	writeJSON(w, http.StatusOK, SceneConfigResponse{
		Scene:      sceneName,
		Primitives: sceneObj.GetPrimitiveCount(),
		Emitters:   sceneObj.CountEmitters(),
		Settings:   controller.Settings(),
		Pose:       controller.Pose(),
		Limits:     controller.Limits(),
		Image:      ImageLimits{Width: size, Height: size},
	})
}

// FrameRequest holds the parsed parameters shared by the frame endpoints
type FrameRequest struct {
	Scene      *scene.Scene
	Width      int
	Height     int
	Controller *controls.Controller
}

// parseFrameRequest builds a controller from the scene's defaults and the
// query parameters that are present
func (s *Server) parseFrameRequest(r *http.Request) (*FrameRequest, error) {
	query := r.URL.Query()

	sceneName := query.Get("scene")
	if sceneName == "" {
		sceneName = DefaultScene
	}
	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		return nil, err
	}

	req := &FrameRequest{Scene: sceneObj}
	if req.Width, err = parseIntParam(query, "width", DefaultWidth, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", DefaultHeight, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}

	controller := controls.NewControllerForScene(sceneObj.Defaults)
	limits := controller.Limits()
	settings := controller.Settings()

	if settings.Samples, err = parseIntParam(query, "samples", settings.Samples, int(limits.Samples.Min), int(limits.Samples.Max)); err != nil {
		return nil, err
	}
	if settings.BounceLimit, err = parseIntParam(query, "bounces", settings.BounceLimit, int(limits.BounceLimit.Min), int(limits.BounceLimit.Max)); err != nil {
		return nil, err
	}
	if settings.FOV, err = parseFloatParam(query, "fov", settings.FOV, limits.FOV.Min, limits.FOV.Max); err != nil {
		return nil, err
	}
	if settings.MoveSpeed, err = parseFloatParam(query, "moveSpeed", settings.MoveSpeed, limits.MoveSpeed.Min, limits.MoveSpeed.Max); err != nil {
		return nil, err
	}
	if settings.MouseSpeed, err = parseFloatParam(query, "mouseSpeed", settings.MouseSpeed, limits.MouseSpeed.Min, limits.MouseSpeed.Max); err != nil {
		return nil, err
	}
	if value := query.Get("background"); value != "" {
		if settings.Background, err = core.ParseColor(value); err != nil {
			return nil, fmt.Errorf("invalid background: %w", err)
		}
	}
	controller.SetSettings(settings)

	pose := controller.Pose()
	if value := query.Get("pos"); value != "" {
		if pose.Position, err = core.ParseVec3(value); err != nil {
			return nil, fmt.Errorf("invalid pos: %w", err)
		}
	}
	if pose.Yaw, err = parseFloatParam(query, "yaw", pose.Yaw, -360, 360); err != nil {
		return nil, err
	}
	if pose.Pitch, err = parseFloatParam(query, "pitch", pose.Pitch, limits.Pitch.Min, limits.Pitch.Max); err != nil {
		return nil, err
	}
	controller.SetPose(pose)

	frame, err := parseIntParam(query, "frame", 0, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	controller.SetFrame(uint32(frame))

	keys, err := controls.ParseKeys(query.Get("keys"))
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		controller.Press(key)
	}

	req.Controller = controller
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene creates a built-in scene or a file scene listed by the
// scenes directory. Arbitrary file paths are refused.
func (s *Server) createScene(sceneName string) (*scene.Scene, error) {
	if strings.HasPrefix(sceneName, "file:") {
		files, err := scene.ListFileScenes()
		if err != nil {
			return nil, err
		}
		listed := false
		for _, info := range files {
			if info.ID == sceneName {
				listed = true
				break
			}
		}
		if !listed {
			return nil, fmt.Errorf("unknown scene: %s", sceneName)
		}
	}
	return scene.Create(sceneName)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
