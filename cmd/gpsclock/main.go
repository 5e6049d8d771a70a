package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/la3za/GPS-clock/internal/config"
	"github.com/la3za/GPS-clock/internal/statuspub"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./gpsclock.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if cfg.Log.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("gpsclock starting")

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("runtime init failed: %v", err)
	}
	defer rt.Close()

	if rt.pub != nil {
		if err := rt.pub.PublishSystem(statuspub.SystemEvent{
			Timestamp: time.Now().UTC(),
			Event:     "STARTUP",
		}); err != nil {
			log.Printf("statuspub: publish startup: %v", err)
		}
	}

	rt.run(ctx)

	if rt.pub != nil {
		if err := rt.pub.PublishSystem(statuspub.SystemEvent{
			Timestamp: time.Now().UTC(),
			Event:     "SHUTDOWN",
			Reason:    "signal",
		}); err != nil {
			log.Printf("statuspub: publish shutdown: %v", err)
		}
	}
	log.Printf("gpsclock stopping")
}
