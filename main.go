package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/metrics"
	"github.com/df07/go-wavefront-tracer/pkg/scene"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

// config holds the command line settings of one render
type config struct {
	Scene     string
	Samples   int
	Workers   int
	Width     int
	Format    film.Format
	Pass      film.Pass
	OutputDir string
}

func main() {
	sceneType := flag.String("scene", "sky", "Scene: a built-in name, 'pbrt:<name>' or a path to a .pbrt file")
	samples := flag.Int("samples", 0, "Samples per pixel (0 uses the scene's setting)")
	workers := flag.Int("workers", 0, "Worker goroutines (0 for one per CPU)")
	width := flag.Int("width", 0, "Image width in pixels (0 uses the scene's setting)")
	format := flag.String("format", "png", "Output format: 'png' or 'tiff'")
	pass := flag.String("pass", "combined", "Pass to save: 'combined', 'background' or 'emission'")
	outputDir := flag.String("output", "output", "Output directory")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	f, err := film.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		os.Exit(2)
	}
	p, err := film.ParsePass(*pass)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid pass: %v\n", err)
		os.Exit(2)
	}
	cfg := config{
		Scene:     *sceneType,
		Samples:   *samples,
		Workers:   *workers,
		Width:     *width,
		Format:    f,
		Pass:      p,
		OutputDir: *outputDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filename, err := run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

func printHelp() {
	fmt.Println("Wavefront Tracer")
	fmt.Println("Usage: wavefront-tracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.Presets() {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	if worlds, err := scene.ListWorldScenes(); err == nil {
		for _, info := range worlds {
			fmt.Printf("  %-12s %s\n", info.ID, info.DisplayName)
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.<format>")
}

// createScene resolves a scene id, applying a width override
func createScene(sceneType string, width int) (*scene.Scene, error) {
	return scene.New(sceneType, wavefront.CameraConfig{Width: width})
}

// checkPass reports an error when the scene does not write pass p
func checkPass(s *scene.Scene, p film.Pass) error {
	enabled := p == film.PassCombined ||
		(p == film.PassBackground && s.Passes.Background) ||
		(p == film.PassEmission && s.Passes.Emission)
	if !enabled {
		return fmt.Errorf("scene %s does not render the %s pass", s.Name, p)
	}
	return nil
}

// run renders a scene and writes the selected pass to the output directory
func run(ctx context.Context, cfg config) (string, error) {
	s, err := createScene(cfg.Scene, cfg.Width)
	if err != nil {
		return "", err
	}
	if err := checkPass(s, cfg.Pass); err != nil {
		return "", err
	}

	options := wavefront.DefaultOptions()
	options.SamplesPerPixel = cfg.Samples
	options.NumWorkers = cfg.Workers

	r, err := s.NewRenderer(options, metrics.New(), nil)
	if err != nil {
		return "", err
	}

	stats, err := r.Scheduler.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", s.Name, err)
	}
	bufferStats := r.Buffer.Stats()
	core.Logger().Info("render summary", "scene", s.Name, "stats", stats.String(),
		"average_samples", bufferStats.AverageSamples)
	core.Logger().Debug("background stage decisions",
		"terminated", stats.Decision(kernel.DeviceKernelTerminated),
		"shade_surface", stats.Decision(kernel.DeviceKernelShadeSurface),
		"shade_surface_raytrace", stats.Decision(kernel.DeviceKernelShadeSurfaceRaytrace))

	dir := filepath.Join(cfg.OutputDir, s.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("render_%s%s", timestamp, cfg.Format.Extension()))
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	err = encodeAndClose(file, func(w io.Writer) error {
		return r.Buffer.Encode(w, cfg.Pass, cfg.Format)
	})
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return filename, nil
}

// encodeAndClose encodes into w and closes it, returning the first error
func encodeAndClose(w io.WriteCloser, encode func(io.Writer) error) error {
	if err := encode(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
