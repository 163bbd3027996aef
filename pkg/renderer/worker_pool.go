package renderer

import (
	"image"
	"runtime"
	"sync"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	Config FrameConfig // Copied into every task so a frame never sees later edits
	Camera Camera
	TaskID int         // For deterministic ordering
	Image  *image.RGBA // Shared output image; tiles write disjoint regions
	Linear []core.Vec3 // Optional shared linear buffer, row-major, same size as Image
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	kernel      *Kernel
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(kernel *Kernel, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numWorkers*2),
		resultQueue: make(chan TileResult, numWorkers*2),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			kernel:      kernel,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers. It is safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- TileResult{
			TaskID: task.TaskID,
			Stats:  w.renderTile(task),
		}
	}
}

// renderTile shades every pixel of the task's tile into the shared buffers
func (w *Worker) renderTile(task TileTask) RenderStats {
	bounds := task.Tile.Bounds
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}
	luminance := 0.0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			result := w.kernel.shadePixel(task.Config, task.Camera, x, y)
			task.Image.SetRGBA(x, y, result.Color)
			if task.Linear != nil {
				task.Linear[y*task.Config.Width+x] = result.Linear
			}
			stats.TotalSamples += result.Stats.SampleCount
			luminance += result.Linear.Luminance()
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageLuminance = luminance / float64(stats.TotalPixels)
	}
	return stats
}
