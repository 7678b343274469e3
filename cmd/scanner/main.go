package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"mtfscanner/internal/applog"
	"mtfscanner/internal/cache"
	"mtfscanner/internal/config"
	"mtfscanner/internal/db"
	"mtfscanner/internal/errs"
	"mtfscanner/internal/health"
	"mtfscanner/internal/marketdata"
	"mtfscanner/internal/notify"
	"mtfscanner/internal/scanner"
	"mtfscanner/internal/sltp"
	"mtfscanner/internal/store"
	"mtfscanner/internal/strategy"
	"mtfscanner/internal/timeutil"
	"mtfscanner/internal/tradestate"
)

// fatal logs a §7 FatalError at CRITICAL severity and aborts the process.
func fatal(component string, err error) {
	applog.Critical("startup: %v", errs.Fatal(component, err))
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("config", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		fatal("db", err)
	}
	defer pool.Close()

	st := store.New(pool)

	provider := marketdata.NewHTTPProvider(cfg.VendorBaseURL)
	candleCache := cache.New(provider)

	riskFraction := decimal.NewFromFloat(cfg.Scanner.RiskPercentage)
	defaultEquity := decimal.NewFromFloat(cfg.Scanner.DefaultEquity)
	estimator := sltp.New(st, sltp.Config{RiskFraction: riskFraction, DefaultEquity: defaultEquity})
	engine := strategy.New(estimator)

	tradeMachine := tradestate.New(st)
	if err := tradeMachine.Load(ctx); err != nil {
		fatal("tradestate", err)
	}

	tz, err := timeutil.NewConverter(cfg.Timezone)
	if err != nil {
		fatal("timeutil", err)
	}

	bus := notify.NewBus()
	notifier := notify.Multi{Notifiers: []notify.Notifier{
		notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, tz),
		notify.NewSMTP(cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.To, cfg.SMTP.UseSSL, tz),
		notify.NewLive(bus),
	}}

	orchestrator := &scanner.Orchestrator{
		Cache:        candleCache,
		Strategy:     engine,
		Store:        st,
		TradeState:   tradeMachine,
		Notifier:     notifier,
		Symbols:      cfg.Scanner.Symbols,
		ScanInterval: cfg.Scanner.ScanInterval,
		Parallelism:  cfg.Scanner.Parallelism,
	}
	heartbeat := &scanner.HeartbeatTicker{
		Store:    st,
		Notifier: notifier,
		Symbols:  cfg.Scanner.Symbols,
		Interval: cfg.Scanner.HeartbeatInterval,
	}
	smtpMailer := notify.NewSMTP(cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.To, cfg.SMTP.UseSSL, tz)
	summary := &scanner.SummaryReporter{
		Store:    st,
		Mailer:   smtpMailer,
		Symbols:  cfg.Scanner.Symbols,
		Interval: cfg.Scanner.EmailSummaryInterval,
	}

	scanCtx, cancelScan := context.WithCancel(ctx)
	go orchestrator.Run(scanCtx)
	go heartbeat.Run(scanCtx)
	go summary.Run(scanCtx)

	healthHandler := health.NewHandler(pool, "mtfscanner")
	wsHandler := notify.NewWSHandler(bus)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Get)
	r.Get("/live", wsHandler.ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	log.Printf("scanner listening on %s", cfg.HTTPAddr)
	log.Printf("tracking %d symbols, scan interval %s", len(cfg.Scanner.Symbols), cfg.Scanner.ScanInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancelScan()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fatal("http", err)
	}
}
