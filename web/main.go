package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	flag.Parse()

	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	webServer := server.NewServer(*port, *scenesDir)
	fmt.Printf("Weekend Raytracer Web Server\nVisit http://localhost:%d/api/scenes to list scenes\n", *port)

	if err := webServer.Start(); err != nil {
		core.Logger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}
