// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"binaural/cmd"
	"binaural/internal/config"
	applog "binaural/internal/log"
	"binaural/pkg/build"
)

// main is the entry point for the binaural renderer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments
//   - Load configuration and apply flag overrides
//
// 2. Concurrent Phase (Hot Path):
//   - Initialize the engine
//   - Render, play, stream or serve until done or interrupted
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Release the engine and devices
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds carry no ldflags.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Main: %v", err)
	}

	options, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("Main: %v", err)
	}
	if options.Command == "" {
		return
	}

	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		applog.Fatalf("Main: %v", err)
	}
	if err := options.Apply(cfg); err != nil {
		applog.Fatalf("Main: %v", err)
	}
	applog.SetLevel(cfg.Level())
	applog.Debugf("Main: %s %s", build.GetInfo().Name, build.GetInfo())

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// Cancelled on the first termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.Execute(ctx, options, cfg, os.Stdout)

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err != nil && ctx.Err() == nil {
		stop()
		applog.Fatalf("Main: %s failed: %v", options.Command, err)
	}
	if ctx.Err() != nil {
		applog.Infof("Main: Interrupted, shut down cleanly")
	}
}
