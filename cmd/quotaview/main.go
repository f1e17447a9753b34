// Package main is the entry point for quotaview.
//
//	@title			Quotaview API
//	@version		1.0
//	@description	Storage usage versus quota for JupyterHub users.
//
//	@host			localhost:8080
//	@BasePath		/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hubward/quotaview/bootstrap"
	"github.com/hubward/quotaview/config"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "quotaview.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	hotReload := flag.Bool("hot-reload", true, "Enable hot reload of configuration")
	flag.Parse()

	if *showVersion {
		fmt.Printf("quotaview %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Load a .env file if one exists; real env vars still win.
	_ = godotenv.Load()

	if *validate {
		cfg, err := config.LoadWithFallback(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration valid\n")
		fmt.Printf("  Listen: %s\n", cfg.ListenAddr())
		fmt.Printf("  Prefix: %s\n", cfg.Hub.ServicePrefix)
		if cfg.MockMode() {
			fmt.Printf("  Mode: mock (no prometheus namespace)\n")
		} else {
			fmt.Printf("  Mode: live (%s, namespace %s)\n", cfg.Prometheus.URL, cfg.Prometheus.Namespace)
		}
		os.Exit(0)
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: *configPath,
		HotReload:  *hotReload,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
