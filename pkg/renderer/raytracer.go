package renderer

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/integrator"
)

// ErrClosed is returned when rendering on a closed Raytracer
var ErrClosed = errors.New("raytracer is closed")

// RenderConfig contains the dispatch settings of the renderer
type RenderConfig struct {
	TileSize   int // Size of each square tile in pixels
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:   32,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// Raytracer renders whole frames by spreading tiles over a long-lived worker
// pool. Frames are rendered one at a time.
type Raytracer struct {
	config RenderConfig
	pool   *WorkerPool
	logger core.Logger

	mu     sync.Mutex
	closed bool
}

// NewRaytracer creates a raytracer for world and starts its workers.
// Call Close to stop them.
func NewRaytracer(world integrator.World, config RenderConfig, logger core.Logger) *Raytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultRenderConfig().TileSize
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	pool := NewWorkerPool(NewKernel(world), config.NumWorkers)
	pool.Start()

	return &Raytracer{
		config: config,
		pool:   pool,
		logger: logger,
	}
}

// NumWorkers returns the size of the worker pool
func (rt *Raytracer) NumWorkers() int {
	return rt.pool.GetNumWorkers()
}

// RenderFrame renders one frame and returns the display-encoded image
func (rt *Raytracer) RenderFrame(cfg FrameConfig) (*image.RGBA, RenderStats, error) {
	return rt.render(cfg, nil)
}

// RenderFrameLinear renders one frame and additionally returns the averaged
// linear radiance of every pixel in row-major order
func (rt *Raytracer) RenderFrameLinear(cfg FrameConfig) (*image.RGBA, []core.Vec3, RenderStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, RenderStats{}, err
	}
	linear := make([]core.Vec3, cfg.Width*cfg.Height)
	img, stats, err := rt.render(cfg, linear)
	if err != nil {
		return nil, nil, stats, err
	}
	return img, linear, stats, nil
}

func (rt *Raytracer) render(cfg FrameConfig, linear []core.Vec3) (*image.RGBA, RenderStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("invalid frame config: %w", err)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil, RenderStats{}, ErrClosed
	}

	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	camera := NewCamera(cfg)
	tiles := NewTileGrid(cfg.Width, cfg.Height, rt.config.TileSize)

	go func() {
		for i, tile := range tiles {
			rt.pool.SubmitTask(TileTask{
				Tile:   tile,
				Config: cfg,
				Camera: camera,
				TaskID: i,
				Image:  img,
				Linear: linear,
			})
		}
	}()

	var stats RenderStats
	for range tiles {
		result, ok := rt.pool.GetResult()
		if !ok {
			return nil, RenderStats{}, ErrClosed
		}
		stats.merge(result.Stats)
	}

	stats.finalize()
	stats.Duration = time.Since(start)
	return img, stats, nil
}

// Close stops the worker pool. Rendering after Close returns ErrClosed.
func (rt *Raytracer) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return
	}
	rt.closed = true
	rt.pool.Stop()
	rt.logger.Printf("Stopped %d render workers\n", rt.pool.GetNumWorkers())
}
