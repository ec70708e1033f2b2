package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tipsxBase/clipboard/internal/app"
	"github.com/tipsxBase/clipboard/internal/capture"
	"github.com/tipsxBase/clipboard/internal/clipboard"
	"github.com/tipsxBase/clipboard/internal/config"
	"github.com/tipsxBase/clipboard/internal/hotkey"
	"github.com/tipsxBase/clipboard/internal/ocr"
	"github.com/tipsxBase/clipboard/internal/overlay"
	"github.com/tipsxBase/clipboard/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("application failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	paths, err := app.DefaultPaths()
	if err != nil {
		return err
	}

	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		logger.Warn("using default configuration", zap.Error(err))
		cfg = config.Default()
	}

	st, err := store.Open(paths.DatabasePath)
	if err != nil {
		return err
	}

	device, err := clipboard.NewSystemDevice()
	if err != nil {
		logger.Warn("clipboard unavailable, running detached", zap.Error(err))
		device = clipboard.NullDevice{}
	}

	a, err := app.New(app.Options{
		Config:         cfg,
		Store:          st,
		Device:         device,
		CaptureSource:  capture.NewScreenSource(),
		OverlayBackend: overlay.NewHeadlessBackend(),
		Hotkeys:        hotkey.NewManager(logger),
		OCR:            ocr.NewEngine(),
		Paths:          paths,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	logger.Info("clipboard manager running")
	<-ctx.Done()

	return a.Close()
}
