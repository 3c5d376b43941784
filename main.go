package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/imageio"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// stdoutPath selects a PPM stream on standard output
const stdoutPath = "-"

// scenesDir is searched for JSON scene files by -list
const scenesDir = "scenes"

// unsetDepth leaves the scene's bounce depth unchanged; 0 is a valid depth
const unsetDepth = -1

type options struct {
	sceneName string
	outPath   string
	width     int
	samples   int
	depth     int
	workers   int
	seed      int64
	tileRows  int
	mode      renderer.Mode
	logLevel  slog.Level
	quiet     bool
	help      bool
	list      bool
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	var modeName, levelName string

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sceneName, "scene", "weekend", "Built-in scene name or path to a .json scene file")
	fs.StringVar(&opts.outPath, "out", "", "Output file (.ppm, .png, .bmp, .tiff, .exr, optionally .gz); '-' writes PPM to stdout")
	fs.IntVar(&opts.width, "width", 0, "Image width override (0 = scene default)")
	fs.IntVar(&opts.samples, "samples", 0, "Samples per pixel override (0 = scene default)")
	fs.IntVar(&opts.depth, "depth", unsetDepth, "Maximum bounce depth override (-1 = scene default)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.Int64Var(&opts.seed, "seed", 42, "Random seed for scene generation and sampling")
	fs.IntVar(&opts.tileRows, "tile-rows", renderer.DefaultTileRows, "Scanlines per work unit")
	fs.StringVar(&modeName, "mode", "path", "Shading mode: 'path' or 'normals'")
	fs.StringVar(&levelName, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	fs.BoolVar(&opts.list, "list", false, "List available scenes")

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}

	mode, err := renderer.ParseMode(modeName)
	if err != nil {
		return opts, fs, err
	}
	opts.mode = mode

	if err := opts.logLevel.UnmarshalText([]byte(levelName)); err != nil {
		return opts, fs, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	return opts, fs, nil
}

// createScene loads the requested scene and applies command line overrides
func createScene(opts options) (*scene.Scene, error) {
	if opts.sceneName == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}

	sc, err := scene.Load(opts.sceneName, opts.seed)
	if err != nil {
		return nil, err
	}

	sc.Camera = renderer.MergeCameraConfig(sc.Camera, renderer.CameraConfig{
		SamplesPerPixel: opts.samples,
	})
	if opts.width != 0 {
		sc.Camera = sc.Camera.WithImageWidth(opts.width)
	}
	if opts.depth != unsetDepth {
		sc.Camera.MaxDepth = opts.depth
	}
	return sc, nil
}

// outputPath returns the explicit -out path or a timestamped default
func outputPath(opts options, sceneName string, now time.Time) string {
	if opts.outPath != "" {
		return opts.outPath
	}
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Weekend Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	printScenes(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output defaults to output/<scene>/render_<timestamp>.png")
}

func printScenes(w io.Writer) {
	scenes, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		fmt.Fprintf(w, "  (failed to list scenes: %v)\n", err)
		return
	}
	for _, s := range scenes {
		fmt.Fprintf(w, "  %-20s %s\n", s.ID, s.Description)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(stdout, fs)
		return nil
	}
	if opts.list {
		printScenes(stdout)
		return nil
	}

	core.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.logLevel})))
	defer core.SetLogger(nil)

	sc, err := createScene(opts)
	if err != nil {
		return err
	}
	camera, err := renderer.NewCamera(sc.Camera)
	if err != nil {
		return fmt.Errorf("scene %s: %w", sc.Name, err)
	}

	renderOpts := renderer.DefaultRenderOptions()
	renderOpts.NumWorkers = opts.workers
	renderOpts.TileRows = opts.tileRows
	renderOpts.Seed = opts.seed
	renderOpts.Mode = opts.mode
	if !opts.quiet {
		renderOpts.Progress = func(p renderer.Progress) {
			fmt.Fprintf(stderr, "\rScanlines remaining: %d ", p.ScanlinesRemaining)
		}
	}

	frame, stats, err := renderer.Render(ctx, sc.World, camera, renderOpts)
	if err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprint(stderr, "\rDone.                 \n")
	}

	// Stats go to stderr when stdout carries the image
	report := stdout
	path := outputPath(opts, sc.Name, time.Now())
	if path == stdoutPath {
		report = stderr
		if err := imageio.WritePPM(stdout, frame); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	} else if err := imageio.Save(path, frame); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(report, "Rendered %s: %dx%d, %d samples per pixel, %d workers\n",
		sc.Name, frame.Width, frame.Height, stats.SamplesPerPixel, stats.Workers)
	p.Fprintf(report, "%d camera rays in %v (%.0f rays/s)\n",
		stats.TotalSamples, stats.Duration.Round(time.Millisecond), stats.SamplesPerSecond())
	if path != stdoutPath {
		fmt.Fprintf(report, "Render saved as %s\n", path)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
