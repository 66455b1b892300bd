// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/pose_sender/main.go
//
// Streams tracked controller and tracker poses as OSC over UDP.
//
// Run:
//
//	go run ./cmd/pose_sender -ip 192.168.1.20 -port 9000
//	go run ./cmd/pose_sender -listdevices
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/lighthouse_osc/internal/app"
	"github.com/relabs-tech/lighthouse_osc/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	ip := flag.String("ip", "127.0.0.1", "OSC destination IP")
	port := flag.Int("port", 9999, "OSC destination port")
	deviceID := flag.Int("showonlydeviceid", -1, "Only send the device with this index (-1 = all)")
	listDevices := flag.Bool("listdevices", false, "Print the connected devices and exit")
	delta := flag.Bool("delta", false, "Print left/right controller positions and their difference")
	showVersion := flag.Bool("v", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pose_sender %s\n", version)
		return
	}

	log.Println("starting lighthouse pose sender (OSC over UDP)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ip":
			cfg.OSCIP = *ip
		case "port":
			cfg.OSCPort = *port
		case "showonlydeviceid":
			cfg.DeviceFilter = *deviceID
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if *listDevices {
		if err := app.RunListDevices(os.Stdout, cfg.Runtime); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunPoseSender(ctx, cfg, *delta); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
