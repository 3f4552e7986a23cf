package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/journal"
	"github.com/Growfam/fc26-sniping/internal/market"
	"github.com/Growfam/fc26-sniping/internal/notify"
	"github.com/Growfam/fc26-sniping/internal/sniper"
	"github.com/Growfam/fc26-sniping/internal/web"
	"github.com/Growfam/fc26-sniping/pkg/retrier"
)

const keepaliveInterval = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	sid := os.Getenv("FUT_SID")
	if sid == "" {
		logger.Fatal("FUT_SID env is not set")
	}
	platform := os.Getenv("FUT_PLATFORM")
	if platform == "" {
		platform = "pc"
	}

	client := market.NewFUTClient(market.Credentials{
		SID:      sid,
		Cookies:  parseCookies(os.Getenv("FUT_COOKIES")),
		Platform: platform,
	}, logger)

	var sink notify.Sink = notify.LogSink{Logger: logger}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		sink = notify.NewTelegram(token, os.Getenv("TELEGRAM_CHAT_ID"), logger)
	}
	asyncSink := notify.NewAsync(sink, 256, logger)
	defer asyncSink.Close()

	jrnl, err := journal.Open(cfg.JournalDir)
	if err != nil {
		logger.Fatal("failed to open trade journal", zap.Error(err))
	}
	defer jrnl.Close()

	bot := sniper.New(cfg, client, asyncSink, jrnl, logger)
	for _, spec := range cfg.Targets {
		bot.AddTarget(spec.Target())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		logger.Fatal("failed to start sniper", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.NewServer(cfg.ListenAddr, bot, logger).Start(gctx)
	})
	g.Go(func() error {
		keepaliveLoop(gctx, client, logger)
		return nil
	})

	<-ctx.Done()
	logger.Info("shutdown signal received")
	bot.Stop()

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// keepaliveLoop pings the session periodically so the SID stays valid
// through quiet stretches.
func keepaliveLoop(ctx context.Context, client *market.FUTClient, logger *zap.Logger) {
	r := retrier.New(retrier.WithInitialInterval(5*time.Second), retrier.WithMaxRetries(3))

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Do(ctx, client.Keepalive); err != nil {
				logger.Warn("session keepalive failed", zap.Error(err))
			}
		}
	}
}

// parseCookies turns a browser "name=value; name2=value2" string into a map.
func parseCookies(raw string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return cookies
}
