package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/df07/go-realtime-pathtracer/pkg/controls"
)

const (
	MaxMoveSteps = 1000
	MaxDrag      = 10000 // Pixels per drag event on either axis
)

// sessionRegistry tracks the controllers of the render streams that are
// currently running, so input can reach them while frames are produced
type sessionRegistry struct {
	mu       sync.Mutex
	next     uint64
	sessions map[string]*controls.Controller
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*controls.Controller)}
}

// add registers a controller and returns its session ID
func (r *sessionRegistry) add(controller *controls.Controller) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := fmt.Sprintf("session-%d", r.next)
	r.sessions[id] = controller
	return id
}

// remove forgets a session; its held keys are released
func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	controller, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		controller.ReleaseAll()
	}
}

func (r *sessionRegistry) get(id string) (*controls.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	controller, ok := r.sessions[id]
	return controller, ok
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SessionInfo is sent as the first event of a render stream
type SessionInfo struct {
	ID string `json:"id"`
}

// InputRequest is one input event for a running session. Action is one of
// press, release, releaseAll, drag, move or settings.
type InputRequest struct {
	Session  string          `json:"session"`
	Action   string          `json:"action"`
	Key      string          `json:"key,omitempty"`
	DX       float64         `json:"dx,omitempty"`
	DY       float64         `json:"dy,omitempty"`
	Steps    int             `json:"steps,omitempty"`    // move: times the held keys are applied, default 1
	Settings json.RawMessage `json:"settings,omitempty"` // settings: fields to change, others are kept
}

// InputResponse is the session state after an input event
type InputResponse struct {
	Session  string            `json:"session"`
	Pose     controls.Pose     `json:"pose"`
	Settings controls.Settings `json:"settings"`
	Frame    uint32            `json:"frame"`
}

// handleSessionInput applies an input event to a running render stream.
// The next frame of the stream reflects it.
func (s *Server) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "Input must be posted")
		return
	}

	var req InputRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	controller, ok := s.sessions.get(req.Session)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown session: %q", req.Session))
		return
	}

	if err := applyInput(controller, req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, InputResponse{
		Session:  req.Session,
		Pose:     controller.Pose(),
		Settings: controller.Settings(),
		Frame:    controller.Frame(),
	})
}

// applyInput validates an input event and applies it to the controller
func applyInput(controller *controls.Controller, req InputRequest) error {
	switch req.Action {
	case "press", "release":
		key, err := controls.ParseKey(req.Key)
		if err != nil {
			return err
		}
		if req.Action == "press" {
			controller.Press(key)
		} else {
			controller.Release(key)
		}

	case "releaseAll":
		controller.ReleaseAll()

	case "drag":
		if math.Abs(req.DX) > MaxDrag || math.Abs(req.DY) > MaxDrag {
			return fmt.Errorf("drag must be within %d pixels, got: %g,%g", MaxDrag, req.DX, req.DY)
		}
		controller.Drag(req.DX, req.DY)

	case "move":
		steps := req.Steps
		if steps == 0 {
			steps = 1
		}
		if steps < 1 || steps > MaxMoveSteps {
			return fmt.Errorf("steps must be between 1 and %d, got: %d", MaxMoveSteps, req.Steps)
		}
		for i := 0; i < steps; i++ {
			controller.Update()
		}

	case "settings":
		if len(req.Settings) == 0 {
			return fmt.Errorf("settings action needs a settings object")
		}
		settings := controller.Settings()
		if err := json.Unmarshal(req.Settings, &settings); err != nil {
			return fmt.Errorf("invalid settings: %w", err)
		}
		controller.SetSettings(settings)

	default:
		return fmt.Errorf("unknown action %q (valid: press, release, releaseAll, drag, move, settings)", req.Action)
	}
	return nil
}
