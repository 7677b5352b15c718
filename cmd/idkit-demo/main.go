package main

import (
	"context"
	"log"

	"github.com/aussiebroadwan/idkit/internal/demo"
)

func main() {
	cfg, err := demo.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	app, err := demo.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize demo: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("demo error: %v", err)
	}
}
