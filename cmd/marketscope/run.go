package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/pkg/pipeline"
)

// run is the entrypoint for a clustering run
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring marketscope: %s", err)
	}

	log.Infof("Starting marketscope version %s", config.VersionString)

	config.SetLogLevel(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	result, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	log.Infof("Run %s finished. Artifacts are in %s", result.RunID, result.OutputDir)
}

// setupSignalHandler cancels the run context on termination so in-flight
// encoder calls and block scans stop early.
func setupSignalHandler(cancel context.CancelFunc) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("Received shutdown signal, canceling run")
		cancel()
	}()
}
