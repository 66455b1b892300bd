// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/lighthouse_osc/internal/app"
	"github.com/relabs-tech/lighthouse_osc/internal/config"
)

func main() {
	log.Println("starting lighthouse web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(config.DefaultPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !config.Get().MirrorEnabled() {
		log.Fatalf("MQTT_BROKER is not set in %s", config.DefaultPath)
	}

	log.Println("Note: device data requires pose_sender running with MQTT_BROKER set")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
