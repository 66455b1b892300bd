package main

import (
	"log"

	"github.com/relabs-tech/lighthouse_osc/internal/app"
	"github.com/relabs-tech/lighthouse_osc/internal/config"
)

func main() {
	log.Println("starting lighthouse console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(config.DefaultPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !config.Get().MirrorEnabled() {
		log.Fatalf("MQTT_BROKER is not set in %s", config.DefaultPath)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
