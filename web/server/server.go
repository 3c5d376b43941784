package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/imageio"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

const (
	defaultScene = "weekend"
	maxWidth     = 2000
	maxSamples   = 10000
	maxDepth     = 500
	unsetDepth   = -1

	// Non-standard status used when the client disconnects mid-render
	statusClientClosedRequest = 499
)

// Server serves renders of the built-in and file scenes over HTTP
type Server struct {
	port      int
	scenesDir string
}

// NewServer creates a new web server. Only scenes listed by
// scene.ListAllScenes(scenesDir) can be rendered.
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string         // Scene ID as returned by /api/scenes
	Width   int            // Image width (0 = scene default)
	Samples int            // Samples per pixel (0 = scene default)
	Depth   int            // Maximum bounce depth (-1 = scene default)
	Seed    int64          // Scene and sampling seed
	Mode    renderer.Mode  // Shading mode
	Format  imageio.Format // Encoding for /api/image
}

// Stats represents render statistics
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int64   `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	Workers          int     `json:"workers"`
	Tiles            int     `json:"tiles"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

// ProgressUpdate is sent via SSE after every finished tile
type ProgressUpdate struct {
	ScanlinesRemaining int   `json:"scanlinesRemaining"`
	TilesDone          int   `json:"tilesDone"`
	TotalTiles         int   `json:"totalTiles"`
	ElapsedMs          int64 `json:"elapsedMs"`
}

// CompleteUpdate is the final SSE event of a render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/image", s.handleImage)
	mux.HandleFunc("GET /api/render", s.handleRender)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	core.Logger().Info("starting web server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists every scene the server can render
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default camera of a scene and the request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sc, err := s.loadScene(req.Scene, req.Seed)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err)
		return
	}

	width, height, err := sc.Camera.ImageSize()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scene": sc.Name,
		"defaults": map[string]any{
			"width":           width,
			"height":          height,
			"samplesPerPixel": sc.Camera.SamplesPerPixel,
			"maxDepth":        sc.Camera.MaxDepth,
			"vfov":            sc.Camera.VFov,
			"defocusAngle":    sc.Camera.DefocusAngle,
			"focusDist":       sc.Camera.FocusDist,
		},
		"limits": map[string]any{
			"width":   map[string]int{"min": 1, "max": maxWidth},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 0, "max": maxDepth},
		},
	})
}

// handleImage renders a scene and responds with the encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	frame, _, err := s.render(r, req, nil, core.Logger())
	if err != nil {
		writeError(w, renderErrorStatus(err), err)
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, frame, req.Format); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRender renders a scene, streaming progress and console output via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	events := &sseWriter{w: w, flusher: flusher}

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		events.send("error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Log records and progress both arrive on this goroutine
	consoleChan := make(chan ConsoleMessage, 100)
	logger := slog.New(NewConsoleHandler(consoleChan, slog.LevelInfo))
	flushConsole := func() {
		for {
			select {
			case msg := <-consoleChan:
				events.sendJSON("console", msg)
			default:
				return
			}
		}
	}

	start := time.Now()
	progress := func(p renderer.Progress) {
		flushConsole()
		events.sendJSON("progress", ProgressUpdate{
			ScanlinesRemaining: p.ScanlinesRemaining,
			TilesDone:          p.TilesDone,
			TotalTiles:         p.TotalTiles,
			ElapsedMs:          time.Since(start).Milliseconds(),
		})
	}

	frame, stats, err := s.render(r, req, progress, logger)
	flushConsole()
	if err != nil {
		events.send("error", fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, frame, imageio.FormatPNG); err != nil {
		events.send("error", fmt.Sprintf("Failed to encode image: %v", err))
		return
	}
	events.sendJSON("complete", CompleteUpdate{
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Stats:     newStats(frame, stats),
		ElapsedMs: time.Since(start).Milliseconds(),
	})
}

// render loads the requested scene and renders it, stopping when the client goes away
func (s *Server) render(r *http.Request, req *RenderRequest, progress func(renderer.Progress), logger *slog.Logger) (*renderer.Frame, renderer.RenderStats, error) {
	sc, err := s.loadScene(req.Scene, req.Seed)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	sc.Camera = renderer.MergeCameraConfig(sc.Camera, renderer.CameraConfig{
		SamplesPerPixel: req.Samples,
	})
	if req.Width != 0 {
		sc.Camera = sc.Camera.WithImageWidth(req.Width)
	}
	if req.Depth != unsetDepth {
		sc.Camera.MaxDepth = req.Depth
	}
	camera, err := renderer.NewCamera(sc.Camera)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if camera.Width()*camera.Height() > maxWidth*maxWidth {
		return nil, renderer.RenderStats{}, fmt.Errorf("%w: image of %dx%d is too large", renderer.ErrInvalidConfig, camera.Width(), camera.Height())
	}

	opts := renderer.DefaultRenderOptions()
	opts.Seed = req.Seed
	opts.Mode = req.Mode
	opts.Progress = progress
	opts.Logger = logger
	return renderer.Render(r.Context(), sc.World, camera, opts)
}

// loadScene resolves id against the listed scenes so arbitrary paths cannot be read
func (s *Server) loadScene(id string, seed int64) (*scene.Scene, error) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range scenes {
		if info.ID != id {
			continue
		}
		if info.Type == "file" {
			return scene.LoadFile(info.ID)
		}
		return scene.Builtin(info.ID, seed)
	}
	return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, id)
}

// parseRenderRequest parses and validates the query parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: defaultScene, Seed: renderer.DefaultRenderOptions().Seed, Format: imageio.FormatPNG}
	if name := values.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(values, "depth", unsetDepth, 0, maxDepth); err != nil {
		return nil, err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	if req.Mode, err = renderer.ParseMode(values.Get("mode")); err != nil {
		return nil, err
	}
	if value := values.Get("format"); value != "" {
		if req.Format, err = imageio.ParseFormat(value); err != nil {
			return nil, err
		}
	}
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

func newStats(frame *renderer.Frame, stats renderer.RenderStats) Stats {
	return Stats{
		Width:            frame.Width,
		Height:           frame.Height,
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     int64(stats.TotalSamples),
		SamplesPerPixel:  stats.SamplesPerPixel,
		Workers:          stats.Workers,
		Tiles:            stats.Tiles,
		SamplesPerSecond: stats.SamplesPerSecond(),
	}
}

func sceneErrorStatus(err error) int {
	var fileErr *scene.FileError
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	if errors.As(err, &fileErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func renderErrorStatus(err error) int {
	switch {
	case errors.Is(err, renderer.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return sceneErrorStatus(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.Logger().Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
