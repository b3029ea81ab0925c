package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/3dmm/site/internal/anim"
	"github.com/3dmm/site/internal/config"
	"github.com/3dmm/site/internal/event"
	"github.com/3dmm/site/internal/handler"
	"github.com/3dmm/site/internal/logging"
	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/notify"
	"github.com/3dmm/site/internal/ratelimit"
	"github.com/3dmm/site/internal/repository"
	"github.com/3dmm/site/internal/service"
	"github.com/3dmm/site/internal/site"
	"github.com/3dmm/site/internal/viewer"
	"github.com/3dmm/site/pkg/auth"
)

// trustedProxies is the number of reverse proxies (nginx) in front of the server.
const trustedProxies = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logging is not configured yet; the default handler still reaches stderr
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	store, err := repository.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		logging.Fatal("failed to open document store", "error", err)
	}
	slog.Info("document store connected", "backend", store.Backend())
	if err := repository.EnsureIndexes(ctx, store); err != nil {
		logging.Fatal("failed to ensure store indexes", "error", err)
	}

	content, err := site.Load(cfg.SiteContentFile)
	if err != nil {
		logging.Fatal("failed to load site content", "error", err)
	}
	renderer, err := site.NewRenderer(content)
	if err != nil {
		logging.Fatal("failed to parse page templates", "error", err)
	}

	// 問い合わせイベント購読者
	contactEvents := event.NewBus[event.ContactSubmitted]("contact.submitted")
	contactEvents.Subscribe(metrics.ContactSubmitted)
	contactEvents.Subscribe(func(ctx context.Context, e event.ContactSubmitted) {
		slog.InfoContext(ctx, "contact submitted",
			"id", e.ID,
			"subject", e.Subject,
			"newsletter", e.SignUpForNews,
		)
	})
	var publisher *notify.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = notify.Dial(cfg.AMQPURL)
		if err != nil {
			logging.Fatal("failed to connect to RabbitMQ", "error", err)
		}
		contactEvents.Subscribe(publisher.ContactSubmitted)
		slog.Info("contact notifications enabled", "exchange", notify.ExchangeName)
	}

	// Redis 設定（未設定の場合はプロセス内のレートリミッタを使う）
	var (
		limiter ratelimit.Limiter
		rdb     *redis.Client
		memory  *ratelimit.Memory
	)
	if cfg.RedisURL != "" {
		rdb, err = ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logging.Fatal("invalid REDIS_URL", "error", err)
		}
		limiter = ratelimit.NewRedis(rdb, cfg.ContactRate, "site:ratelimit:contact:")
	} else {
		memory = ratelimit.NewMemory(cfg.ContactRate)
		limiter = memory
	}

	contactService := service.NewContactService(store.Contacts(), store.Newsletter(), contactEvents)
	dataset := viewer.NewDataset(cfg.PointCloudURL, nil)

	h := handler.New(store, cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService)
	legalHandler := handler.NewLegalHandler(content)
	pageHandler := handler.NewPageHandler(renderer)
	viewerHandler := handler.NewViewerHandler(cfg.PointCloudURL, dataset, viewer.DefaultConfig())
	heroHandler := handler.NewHeroHandler(anim.DefaultTimeline(), content.Hero)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("POST /api/contact", handler.RateLimit(limiter, trustedProxies)(http.HandlerFunc(contactHandler.Submit)))
	mux.HandleFunc("GET /api/legal/{type}", legalHandler.Legal)
	mux.HandleFunc("GET /api/viewer", viewerHandler.Viewer)
	mux.HandleFunc("GET /api/hero", heroHandler.Hero)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(site.Static())))
	mux.HandleFunc("GET /", pageHandler.Page)

	// Admin routes (ADMIN_JWT_SECRET 設定時のみ)
	if cfg.AdminEnabled() {
		requireAdmin := auth.RequireAdmin([]byte(cfg.AdminJWTSecret))
		mux.Handle("GET /api/admin/contacts", requireAdmin(http.HandlerFunc(contactHandler.AdminList)))
		mux.Handle("GET /api/admin/newsletter", requireAdmin(http.HandlerFunc(contactHandler.AdminNewsletter)))
	} else {
		slog.Info("admin routes disabled; set ADMIN_JWT_SECRET to enable")
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.RequestLogger(handler.SecurityHeaders(handler.Origin(cfg.PointCloudURL))(h.CORS(mux))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		slog.Error("close document store", "error", err)
	}
	if publisher != nil {
		publisher.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("close redis", "error", err)
		}
	}
	if memory != nil {
		memory.Close()
	}
}
