package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Abudabih/FbAutomationv1/internal/bot"
	"github.com/Abudabih/FbAutomationv1/internal/command"
	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/credstore"
	"github.com/Abudabih/FbAutomationv1/internal/events"
	"github.com/Abudabih/FbAutomationv1/internal/httpapi"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

var version = "1.2.0"

func main() {
	obs.Init()

	dataDir := envOr("BOT_DATA_DIR", ".")
	if err := obs.OpenLogFile(filepath.Join(dataDir, "logs")); err != nil {
		log.Fatalf("open logs: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dataDir, "config.json"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	style, err := config.LoadStyle(filepath.Join(dataDir, "style.json"))
	if err != nil {
		log.Fatalf("load style: %v", err)
	}

	store, err := credstore.New(
		filepath.Join(dataDir, "cookies"),
		filepath.Join(dataDir, "invalid_cookies"),
	)
	if err != nil {
		log.Fatalf("open credential store: %v", err)
	}

	commands := command.NewRegistry()
	command.RegisterBuiltins(commands)
	dispatcher := command.NewDispatcher(commands, command.NewCooldowns(), cfg.CreatorID, style)

	fanout := events.NewFanout()
	if err := fanout.Register("introduction", events.Introduction{}); err != nil {
		log.Fatalf("register event module: %v", err)
	}

	mgr, err := bot.NewManager(bot.Options{
		Store:      store,
		Login:      messenger.Login, // transports register themselves on import
		Dispatcher: dispatcher,
		Commands:   commands,
		Fanout:     fanout,
		Config:     cfg,
		Style:      style,
	})
	if err != nil {
		log.Fatalf("build manager: %v", err)
	}

	api := httpapi.New(mgr, version, os.Getenv("BOT_API_SECRET"))

	srv := &http.Server{
		Addr:              envOr("BOT_ADDR", ":3000"),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	obs.Info("starting bot-api", "version", version, "addr", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	loadCtx, cancelLoad := context.WithCancel(context.Background())
	go mgr.AutoLoad(loadCtx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	obs.Info("shutting down")
	cancelLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mgr.StopAll(ctx)
	_ = srv.Shutdown(ctx)
	obs.Info("stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
