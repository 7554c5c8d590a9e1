package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"scribe/internal/config"
	"scribe/internal/daemon"
	"scribe/internal/history"
	"scribe/internal/ipc"
	"scribe/internal/logging"
	"scribe/internal/supervisor"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	hub := logging.NewStreamHub(0)
	logger, err := logging.NewWithHub(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "scribed.log")},
	}, hub)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(ctx, cfg.HistoryPath(), cfg.History.MaxEntries)
		if err != nil {
			logger.Error("open history store", logging.Error(err))
			return
		}
	}

	sup := supervisor.New(cfg, logger, supervisor.WithRecorder(daemon.NewRecorder(store)))

	d, err := daemon.New(cfg, logger, sup, store, hub)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		d.Stop()
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-ctx.Done()
	logger.Info("scribed shutting down")
}
