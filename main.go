package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-realtime-pathtracer/pkg/controls"
	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/renderer"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneType  string
	sceneFile  string
	width      int
	height     int
	samples    int
	bounces    int
	fov        float64
	pos        string
	yaw        float64
	pitch      float64
	background string
	frames     int
	keys       string
	workers    int
	dumpConfig bool
	replay     string
	help       bool

	set map[string]bool // Flags given explicitly; others fall back to scene defaults
}

func parseFlags(args []string, output io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.sceneType, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.sceneFile, "scene-file", "", "Path to a JSON scene file (overrides -scene)")
	fs.IntVar(&opts.width, "width", 400, "Image width in pixels")
	fs.IntVar(&opts.height, "height", 225, "Image height in pixels")
	fs.IntVar(&opts.samples, "samples", 50, "Samples per pixel per frame (1-1000)")
	fs.IntVar(&opts.bounces, "bounces", 5, "Bounce limit (1-20)")
	fs.Float64Var(&opts.fov, "fov", 90, "Vertical field of view in degrees (1-150)")
	fs.StringVar(&opts.pos, "pos", "0,1,2", "Camera position as x,y,z")
	fs.Float64Var(&opts.yaw, "yaw", -90, "Camera yaw in degrees")
	fs.Float64Var(&opts.pitch, "pitch", 0, "Camera pitch in degrees (-89 to 89)")
	fs.StringVar(&opts.background, "background", "0,0,0", "Background color as linear r,g,b, #rrggbb or a color name")
	fs.IntVar(&opts.frames, "frames", 1, "Number of frames to render")
	fs.StringVar(&opts.keys, "keys", "", "Keys held during every frame, comma-separated (w,a,s,d,space,shift)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = CPU count)")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "Also write each frame's packed config block as frame_<n>.cfg")
	fs.StringVar(&opts.replay, "replay", "", "Render the single frame described by a .cfg block written by -dump-config")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return options{}, fs, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, fs, nil
}

// validate checks the values that are not clamped by the controls
func (o options) validate() error {
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", o.width, o.height)
	}
	if o.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", o.frames)
	}
	if o.workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.workers)
	}
	return nil
}

// createScene selects a JSON scene file if given, otherwise a built-in scene
func createScene(sceneType, sceneFile string) (*scene.Scene, error) {
	if sceneFile != "" {
		return scene.LoadFile(sceneFile)
	}
	if sceneType == "" {
		return nil, fmt.Errorf("scene name must not be empty")
	}
	return scene.Create(sceneType)
}

// newController starts from the scene's suggested view and applies the
// flags that were given explicitly
func newController(s *scene.Scene, opts options) (*controls.Controller, error) {
	c := controls.NewControllerForScene(s.Defaults)

	settings := c.Settings()
	if opts.set["samples"] {
		settings.Samples = opts.samples
	}
	if opts.set["bounces"] {
		settings.BounceLimit = opts.bounces
	}
	if opts.set["fov"] {
		settings.FOV = opts.fov
	}
	if opts.set["background"] {
		background, err := core.ParseColor(opts.background)
		if err != nil {
			return nil, fmt.Errorf("invalid -background: %w", err)
		}
		settings.Background = background
	}
	c.SetSettings(settings)

	pose := c.Pose()
	if opts.set["pos"] {
		position, err := core.ParseVec3(opts.pos)
		if err != nil {
			return nil, fmt.Errorf("invalid -pos: %w", err)
		}
		pose.Position = position
	}
	if opts.set["yaw"] {
		pose.Yaw = opts.yaw
	}
	if opts.set["pitch"] {
		pose.Pitch = opts.pitch
	}
	c.SetPose(pose)

	keys, err := controls.ParseKeys(opts.keys)
	if err != nil {
		return nil, fmt.Errorf("invalid -keys: %w", err)
	}
	for _, key := range keys {
		c.Press(key)
	}
	return c, nil
}

// createOutputDir returns the output directory for a scene name
func createOutputDir(sceneName string) string {
	base := filepath.Base(sceneName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return filepath.Join("output", "scene")
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	return filepath.Join("output", name)
}

func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}

// saveConfigBlock writes the packed frame configuration next to its image
func saveConfigBlock(filename string, cfg renderer.FrameConfig) error {
	block, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, block, 0644); err != nil {
		return fmt.Errorf("error writing config block: %w", err)
	}
	return nil
}

// loadConfigBlock reads a packed frame configuration written by saveConfigBlock
func loadConfigBlock(filename string) (renderer.FrameConfig, error) {
	var cfg renderer.FrameConfig
	block, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("error reading config block: %w", err)
	}
	if err := cfg.UnmarshalBinary(block); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// replayFrame renders the frame stored in opts.replay. The block carries
// its own size, settings, pose and frame counter.
func replayFrame(raytracer *renderer.Raytracer, opts options, outputDir string, logger core.Logger) ([]string, error) {
	cfg, err := loadConfigBlock(opts.replay)
	if err != nil {
		return nil, err
	}

	img, stats, err := raytracer.RenderFrame(cfg)
	if err != nil {
		return nil, err
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("replay_%04d.png", cfg.Frame))
	if err := savePNG(filename, img); err != nil {
		return nil, err
	}
	logger.Printf("Replayed frame %d at %dx%d in %v\n", cfg.Frame, cfg.Width, cfg.Height, stats.Duration)
	return []string{filename}, nil
}

// run renders opts.frames frames into outputDir and returns the saved files
func run(ctx context.Context, opts options, outputDir string, logger core.Logger) ([]string, error) {
	selectedScene, err := createScene(opts.sceneType, opts.sceneFile)
	if err != nil {
		return nil, err
	}
	logger.Printf("Using scene %q (%d primitives, %d emitters)...\n",
		selectedScene.Name, selectedScene.GetPrimitiveCount(), selectedScene.CountEmitters())

	controller, err := newController(selectedScene, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	config := renderer.DefaultRenderConfig()
	config.NumWorkers = opts.workers
	raytracer := renderer.NewRaytracer(selectedScene, config, logger)
	defer raytracer.Close()

	if opts.replay != "" {
		return replayFrame(raytracer, opts, outputDir, logger)
	}

	loop := renderer.NewFrameLoop(raytracer, controller, renderer.LoopOptions{
		Width:     opts.width,
		Height:    opts.height,
		MaxFrames: opts.frames,
	}, logger)

	frames, errs := loop.Run(ctx)
	var saved []string
	for result := range frames {
		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", result.Config.Frame))
		if err := savePNG(filename, result.Image); err != nil {
			return saved, err
		}
		saved = append(saved, filename)
		if opts.dumpConfig {
			block := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.cfg", result.Config.Frame))
			if err := saveConfigBlock(block, result.Config); err != nil {
				return saved, err
			}
			saved = append(saved, block)
		}
		logger.Printf("Frame %d rendered in %v (%d samples/pixel, %.1f FPS)\n",
			result.Config.Frame, result.Duration, result.Config.Samples, result.FPS.Current)
	}
	if err := <-errs; err != nil {
		return saved, err
	}

	fps := loop.FPS()
	logger.Printf("FPS avg %.2f, min %.2f, max %.2f\n", fps.Average, fps.Min, fps.Max)
	return saved, nil
}

func main() {
	opts, fs, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	// Show help if requested
	if opts.help {
		fmt.Println("Real-time Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.SetOutput(os.Stdout)
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		fmt.Println("  default  - Spheres over a ground plane with a glowing light")
		fmt.Println("  original - Four spheres on a large ground sphere")
		fmt.Println("  emissive - A single glowing sphere filling the view")
		fmt.Println("  empty    - Background only")
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/frame_<n>.png")
		fmt.Println("With -dump-config each frame also gets output/<scene>/frame_<n>.cfg")
		return
	}

	if err := opts.validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Starting Real-time Path Tracer...")

	sceneName := opts.sceneType
	if opts.sceneFile != "" {
		sceneName = opts.sceneFile
	}

	saved, err := run(context.Background(), opts, createOutputDir(sceneName), renderer.NewDefaultLogger())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, filename := range saved {
		fmt.Printf("Render saved as %s\n", filename)
	}
}
