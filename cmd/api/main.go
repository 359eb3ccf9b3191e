package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/nikhilza/focuspanel/internal/config"
	"github.com/nikhilza/focuspanel/internal/handler"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	"github.com/nikhilza/focuspanel/internal/service/enrich"
	qaService "github.com/nikhilza/focuspanel/internal/service/qa"
	summaryService "github.com/nikhilza/focuspanel/internal/service/summary"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The enrichment hook is optional; without Ark credentials every caller
	// degrades to its deterministic heuristics.
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing with heuristic output only")
			chatModel = nil
		} else {
			log.Println("Enrichment model initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, running with heuristic output only")
	}

	enrichSvc, err := enrich.NewService(ctx, chatModel, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize enrichment service: %v", err)
		enrichSvc = nil
	} else if enrichSvc.Enabled() {
		log.Println("Enrichment service enabled")
	}

	var enricher enrich.Enricher
	if enrichSvc != nil && enrichSvc.Enabled() {
		enricher = enrichSvc
	}

	discussions := discussionService.NewService(enricher, cfg.Discussion)
	synthesizer := summaryService.NewSynthesizer()
	qaSvc := qaService.NewService(cfg.Discussion.Tables)

	router := handler.NewRouter(discussions, synthesizer, qaSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Focus panel backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
