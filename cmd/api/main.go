package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"meridian/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load .env overrides and config.
// 2) Build app wiring.
// 3) Serve producer-service HTTP routes and the relay ops surface.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	log.Println("meridian api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("meridian api stopped with error: %v", err)
	}
}
