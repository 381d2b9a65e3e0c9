package main

import (
	"os"

	flag "github.com/spf13/pflag"

	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/web/server"
)

func main() {
	port := flag.IntP("port", "p", 8080, "Port to serve on")
	scenesDir := flag.String("scenes-dir", "scenes", "Directory searched for glTF meshes")
	flag.Parse()

	logger := renderer.NewDefaultLogger()
	webServer := server.NewServer(*port, *scenesDir, logger)

	logger.Printf("Path Tracer Web Server\n")
	logger.Printf("Visit http://localhost:%d/api/scenes to list scenes\n", *port)

	if err := webServer.Start(); err != nil {
		logger.Printf("Error starting server: %v\n", err)
		os.Exit(1)
	}
}
