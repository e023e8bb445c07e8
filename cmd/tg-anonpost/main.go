package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg-anonpost/internal/bot"
	"tg-anonpost/internal/config"
	"tg-anonpost/internal/crash"
	"tg-anonpost/internal/handler"
	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/platform"
	"tg-anonpost/internal/relay"
	"tg-anonpost/internal/storage"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")

	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := storage.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	banRepo := storage.NewBanRepository(storage.DB)
	settingsRepo := storage.NewSettingsRepository(storage.DB)
	submissionRepo := storage.NewSubmissionRepository(storage.DB)
	for name, migrate := range map[string]func() error{
		"BanRecord":  banRepo.MigrateTable,
		"Setting":    settingsRepo.MigrateTable,
		"Submission": submissionRepo.MigrateTable,
	} {
		if err := migrate(); err != nil {
			log.Fatalf("Failed to migrate %s table: %v", name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	botService, err := bot.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	client := platform.NewClient(botService.Bot, time.Duration(cfg.Relay.RequestTimeoutSeconds)*time.Second)
	workflow := relay.NewWorkflow(banRepo, submissionRepo, settingsRepo, client, cfg.Relay.DefaultChannel)

	handler.Initialize(cfg, workflow, settingsRepo, submissionRepo, banRepo)
	handler.SetupMessageHandlers(botService.Handler, botService.Bot)

	if botService.Server != nil {
		crash.SafeGoroutine("webhook-server", func() {
			if err := botService.Server.Start(); err != nil {
				log.Fatalf("HTTP server error: %v", err)
			}
		})

		// Give server time to start
		time.Sleep(500 * time.Millisecond)
		log.Println("HTTP server is ready, starting bot handler...")
	}

	crash.SafeGoroutine("bot-handler", botService.Start)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down...", sig)

	botService.Stop()

	if botService.Server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := botService.Server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	log.Println("Server gracefully stopped")
}
