package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-realtime-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	static := flag.String("static", "static/", "Directory of the browser front-end")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webServer := server.NewServerWithStatic(*port, *static)

	log.Printf("Real-time Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start exploring", *port)
	log.Printf("Render streams accept live input at POST /api/session/input")

	if err := webServer.Run(ctx); err != nil {
		log.Printf("Error running server: %v", err)
		os.Exit(1)
	}
}
