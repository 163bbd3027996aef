package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// FrameSource produces the configuration of the next frame. Implementations
// snapshot their state atomically and advance their frame counter per call.
type FrameSource interface {
	NextFrame(width, height int) FrameConfig
}

// FrameResult is one rendered frame of a FrameLoop
type FrameResult struct {
	Index    int // 0-based position in this run
	Config   FrameConfig
	Image    *image.RGBA
	Stats    RenderStats
	Duration time.Duration
	FPS      FPSStats
	IsLast   bool
}

// LoopOptions configures a FrameLoop
type LoopOptions struct {
	Width     int
	Height    int
	MaxFrames int // 0 renders until the context is cancelled
}

// FrameLoop renders frames back to back from a FrameSource
type FrameLoop struct {
	raytracer *Raytracer
	source    FrameSource
	options   LoopOptions
	fps       *FPSCounter
	logger    core.Logger
}

// NewFrameLoop creates a frame loop. The raytracer stays owned by the caller.
func NewFrameLoop(raytracer *Raytracer, source FrameSource, options LoopOptions, logger core.Logger) *FrameLoop {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &FrameLoop{
		raytracer: raytracer,
		source:    source,
		options:   options,
		fps:       NewFPSCounter(DefaultFPSWindow),
		logger:    logger,
	}
}

// FPS returns the loop's frame rate statistics
func (fl *FrameLoop) FPS() FPSStats {
	return fl.fps.Stats()
}

// Run renders frames with channel-based communication. The context is only
// checked between frames; a frame that has started always completes. Both
// channels are closed when the loop ends.
func (fl *FrameLoop) Run(ctx context.Context) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		fl.logger.Printf("Starting frame loop at %dx%d with %d workers...\n",
			fl.options.Width, fl.options.Height, fl.raytracer.NumWorkers())

		for index := 0; fl.options.MaxFrames <= 0 || index < fl.options.MaxFrames; index++ {
			select {
			case <-ctx.Done():
				fl.logger.Printf("Frame loop cancelled before frame %d\n", index)
				errChan <- ctx.Err()
				return
			default:
			}

			start := time.Now()
			cfg := fl.source.NextFrame(fl.options.Width, fl.options.Height)
			img, stats, err := fl.raytracer.RenderFrame(cfg)
			if err != nil {
				errChan <- err
				return
			}
			elapsed := time.Since(start)
			fl.fps.Record(elapsed)

			result := FrameResult{
				Index:    index,
				Config:   cfg,
				Image:    img,
				Stats:    stats,
				Duration: elapsed,
				FPS:      fl.fps.Stats(),
				IsLast:   fl.options.MaxFrames > 0 && index == fl.options.MaxFrames-1,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}

		fps := fl.fps.Stats()
		fl.logger.Printf("Frame loop finished: %d frames, FPS avg %.2f min %.2f max %.2f\n",
			fps.Frames, fps.Average, fps.Min, fps.Max)
	}()

	return frameChan, errChan
}
