package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brightpath/internal/application/store"
	"brightpath/internal/application/wizard"
	"brightpath/internal/assistant"
	"brightpath/internal/audit"
	"brightpath/internal/platform/config"
	"brightpath/internal/platform/health"
	"brightpath/internal/platform/httpserver"
	"brightpath/internal/platform/logger"
	"brightpath/internal/platform/metrics"
	"brightpath/internal/platform/middleware"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/signing/document"
	"brightpath/internal/submission"
	"brightpath/internal/submission/notify"
	httptransport "brightpath/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing brightpath intake",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	drafts := store.New()
	auditor := audit.NewLogger(log, audit.NewInMemoryStore())

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPAddr != "" && len(cfg.NotifyRecipients) > 0 {
		notifier = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom, cfg.NotifyRecipients)
	}
	pipeline := submission.NewPipeline(
		submission.NewHTTPIntakeClient(cfg.IntakeURL, cfg.IntakeAPIKey),
		log,
		submission.WithNotifier(notifier),
	)

	controller := wizard.NewController(
		drafts,
		document.NewSigner(),
		audittrail.NewCollector(cfg.IPResolverURL, log),
		pipeline,
		auditor,
		log,
		wizard.WithConfirmDelay(cfg.ConfirmDelay),
		wizard.WithMetrics(m),
	)

	issuer := assistant.NewTokenIssuer(
		cfg.AssistantSigningKey,
		cfg.AssistantModel,
		cfg.AssistantVoice,
		cfg.AssistantTokenTTL,
	)
	if cfg.AssistantRealtimeURL != "" {
		bridge := assistant.NewBridge(cfg.AssistantRealtimeURL, issuer, loggingHost{log}, log,
			assistant.WithBridgeMetrics(m))
		controller.Subscribe(bridge)
		defer bridge.Disconnect()
	}

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("draft_store", func(context.Context) error { return nil })

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Applications: httptransport.NewApplicationHandler(controller, log),
		Assistant:    httptransport.NewAssistantHandler(issuer, log, m),
		Health:       healthHandler,
		Metadata:     &middleware.MetadataConfig{TrustedProxies: middleware.ParseTrustedProxies(cfg.TrustedProxies)},
		Registry:     registry,
		Logger:       log,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepLoop(sweepCtx, controller, cfg.DraftTTL)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// sweepLoop discards abandoned drafts on a fixed cadence.
func sweepLoop(ctx context.Context, controller *wizard.Controller, ttl time.Duration) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			controller.SweepExpired(ctx, ttl)
		}
	}
}

// loggingHost records assistant tool effects. A session-aware transport can
// replace it to push effects to the connected client.
type loggingHost struct {
	log *slog.Logger
}

func (h loggingHost) Navigate(route assistant.Route) {
	h.log.Info("assistant navigation", "route", string(route))
}

func (h loggingHost) SetLanguage(lang string) {
	h.log.Info("assistant language change", "language", lang)
}
