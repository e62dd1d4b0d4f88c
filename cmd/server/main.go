package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/securityexcellence/lwsync/config"
	"github.com/securityexcellence/lwsync/internal/app"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	app.Run(cfg)
}
