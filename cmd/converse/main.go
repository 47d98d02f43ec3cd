package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contextual-ai/converse/observability"
	"github.com/contextual-ai/converse/pipeline"
	"github.com/contextual-ai/converse/provider"
	"github.com/contextual-ai/converse/transport"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to config JSON file")
		message      = flag.String("message", "", "Message to send (one-shot mode)")
		sessionID    = flag.String("session", "", "Session id (defaults to a fresh UUID)")
		systemPrompt = flag.String("system-prompt", "", "System prompt (overrides config)")
		apiKey       = flag.String("api-key", "", "Model API key (overrides config and CONVERSE_API_KEY)")
		dryRun       = flag.Bool("dry-run", false, "Use the echo model instead of a live endpoint")
		serve        = flag.Bool("serve", false, "Serve the HTTP API instead of one-shot mode")
		addr         = flag.String("addr", ":8080", "HTTP listen address for -serve")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if !*serve && *message == "" {
		fmt.Fprintln(os.Stderr, "Usage: converse -message <text> | converse -serve")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := pipeline.DefaultConfig()
	if *configFile != "" {
		loaded, err := pipeline.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *systemPrompt != "" {
		cfg.SystemPrompt = *systemPrompt
	}
	if *apiKey != "" {
		cfg.Provider.APIKey = *apiKey
	} else if key := os.Getenv("CONVERSE_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if *dryRun {
		cfg.Provider.Kind = provider.KindEcho
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serve {
		runServer(ctx, &cfg, logger, *addr)
		return
	}

	p, err := pipeline.New(&cfg, pipeline.WithObserver(observability.NewSlogObserver(logger)))
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer p.Close()

	id := *sessionID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
		logger.Info("minted session id", "session_id", id)
	}

	reply, err := p.Respond(ctx, id, *message)
	if err != nil {
		log.Fatalf("Respond failed: %v", err)
	}

	fmt.Println(reply)
}

func runServer(ctx context.Context, cfg *pipeline.Config, logger *slog.Logger, addr string) {
	reg := prometheus.NewRegistry()
	promObs, err := observability.NewPromObserver(reg)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	observer := observability.NewMultiObserver(
		observability.NewSlogObserver(logger),
		promObs,
	)

	p, err := pipeline.New(cfg, pipeline.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer p.Close()

	server := &http.Server{
		Addr:    addr,
		Handler: transport.NewRouter(p, reg),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
