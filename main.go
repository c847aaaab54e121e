package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hbomb79/Reel/internal"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/mitchellh/go-homedir"
)

var log = logger.Get("Main")

// main is the entry point to the program. The user's Reel
// configuration is loaded from their home directory (or the path
// provided via the -config flag), falling back to environment-only
// configuration if no file exists.
func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML configuration file")
	logLevel := flag.String("log-level", "INFO", "minimum logging level (VERBOSE, DEBUG, INFO, WARNING, ERROR)")
	flag.Parse()

	level, err := logger.ParseLogLevel(*logLevel)
	if err != nil {
		log.Emit(logger.FATAL, "Invalid -log-level: %v\n", err)
		os.Exit(1)
	}
	logger.SetMinLoggingLevel(level.Level())

	config := internal.ReelConfig{}
	if _, err := os.Stat(*configPath); err == nil {
		if err := config.LoadFromFile(*configPath); err != nil {
			log.Emit(logger.FATAL, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := config.LoadFromEnv(); err != nil {
			log.Emit(logger.FATAL, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	} else {
		log.Emit(logger.FATAL, "Failed to access configuration file %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := internal.New(config).Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Reel stopped with error: %v\n", err)
		os.Exit(1)
	}

	log.Emit(logger.STOP, "Reel stopped\n")
}

func defaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(home, ".config", "reel", "config.yaml")
}
