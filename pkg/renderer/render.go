package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// ErrPoolClosed is returned when the worker pool stops before every tile is reported
var ErrPoolClosed = errors.New("worker pool closed unexpectedly")

// RenderOptions controls how a frame is distributed over workers
type RenderOptions struct {
	NumWorkers int            // Number of parallel workers (0 = use CPU count)
	TileRows   int            // Scanlines per tile (0 = DefaultTileRows)
	Seed       int64          // Base seed; per-tile samplers are derived from it
	Mode       Mode           // Shading function
	Progress   func(Progress) // Called after every finished tile, from the calling goroutine
	Logger     *slog.Logger   // Render log destination (nil = core.Logger())
}

// DefaultRenderOptions returns sensible default values
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		NumWorkers: 0,
		TileRows:   DefaultTileRows,
		Seed:       42,
		Mode:       ModePath,
	}
}

// Progress describes how much of a render is complete
type Progress struct {
	ScanlinesRemaining int
	TilesDone          int
	TotalTiles         int
}

// Render traces every pixel of camera's image of world in parallel. The result
// is identical for any worker count given the same seed and tile height.
func Render(ctx context.Context, world geometry.Hittable, camera *Camera, opts RenderOptions) (*Frame, RenderStats, error) {
	if opts.TileRows < 0 {
		return nil, RenderStats{}, fmt.Errorf("tile rows must not be negative, got %d", opts.TileRows)
	}

	logger := opts.Logger
	if logger == nil {
		logger = core.Logger()
	}
	start := time.Now()

	width, height := camera.Width(), camera.Height()
	frame := NewFrame(width, height)
	tiles := NewTileGrid(width, height, opts.TileRows, opts.Seed)

	pool := NewWorkerPool(NewRaytracer(world, camera, opts.Mode), len(tiles), opts.NumWorkers)

	logger.Info("render started",
		"width", width,
		"height", height,
		"samples_per_pixel", camera.Config().SamplesPerPixel,
		"max_depth", camera.Config().MaxDepth,
		"mode", opts.Mode.String(),
		"workers", pool.GetNumWorkers(),
		"tiles", len(tiles))

	pool.Start(ctx)
	for taskID, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: taskID, Frame: frame})
	}

	stats := RenderStats{
		SamplesPerPixel: camera.Config().SamplesPerPixel,
		Workers:         pool.GetNumWorkers(),
		Tiles:           len(tiles),
	}
	progress := Progress{ScanlinesRemaining: height, TotalTiles: len(tiles)}

	var renderErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			renderErr = ErrPoolClosed
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}

		stats.Add(result.Stats)
		tile := tiles[result.TaskID]
		progress.ScanlinesRemaining -= tile.Bounds.Dy()
		progress.TilesDone++

		logger.Debug("tile done", "tile", tile.ID, "rows", tile.Bounds.Dy(), "remaining", progress.ScanlinesRemaining)
		if opts.Progress != nil {
			opts.Progress(progress)
		}
	}
	pool.Stop()

	stats.Duration = time.Since(start)
	if renderErr != nil {
		logger.Warn("render aborted", "error", renderErr, "tiles_done", progress.TilesDone)
		return nil, stats, renderErr
	}

	logger.Info("render finished", "duration", stats.Duration, "samples", stats.TotalSamples)
	return frame, stats, nil
}
