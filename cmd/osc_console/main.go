// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/lighthouse_osc/internal/app"
	"github.com/relabs-tech/lighthouse_osc/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	addr := flag.String("addr", "", "UDP address to listen on (default OSC_LISTEN_ADDR)")
	flag.Parse()

	log.Println("starting lighthouse OSC console (UDP receiver)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	listen := *addr
	if listen == "" {
		listen = config.Get().OSCListenAddr
	}

	if err := app.RunOSCConsole(listen); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
