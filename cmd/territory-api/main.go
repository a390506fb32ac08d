// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"territory-api/internal/api"
	"territory-api/internal/cache"
	"territory-api/internal/config"
	"territory-api/internal/geoscope"
	"territory-api/internal/index"
	"territory-api/internal/ingest"
	"territory-api/internal/logger"
	"territory-api/internal/metrics"
	"territory-api/internal/middleware"
	"territory-api/internal/migrate"
	"territory-api/internal/store"
	"territory-api/internal/utils"
	"territory-api/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		os.Exit(1)
	}
	// 日志初始化
	l := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	l.Info("startup", "commit", version.Commit, "source", cfg.CorpusSource, "api_base", cfg.APIBase)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var st *store.Store
	if cfg.CorpusSource == "postgres" {
		db, err := utils.OpenPostgres(cfg.Postgres)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		if src, at, ok, err := st.LastImport(ctx); err == nil && ok {
			l.Info("corpus_last_import", "source", src, "at", at)
		}
	}

	rc := utils.OpenRedis(cfg.Redis)
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}
	snapCache := cache.New(rc, cfg.SnapshotCacheTTL, cfg.SnapshotLRUSize)

	var scoper *geoscope.Scoper
	if cfg.GeoIPPath != "" {
		if scoper, err = geoscope.Open(cfg.GeoIPPath); err != nil {
			l.Error("geoip_open_error", "err", err)
		} else {
			defer scoper.Close()
			l.Info("geoip_ready", "path", cfg.GeoIPPath)
		}
	}

	policy, _ := index.ParsePolicy(cfg.IngestPolicy)
	var loader ingest.RecordLoader
	if st != nil {
		loader = st
	}
	src, err := ingest.NewSource(cfg, loader)
	if err != nil {
		l.Error("corpus_source_error", "err", err)
		os.Exit(1)
	}
	holder := index.NewHolder(nil)
	reloader := ingest.NewReloader(src, holder, index.WithPolicy(policy))
	// 背景：首次加载失败不退出，/snapshot 返回 503，等待管理员修复后调用 /reload
	if _, err := reloader.Reload(ctx); err != nil {
		l.Error("corpus_initial_load_error", "err", err)
	}
	reloader.StartPeriodic(ctx, cfg.ReloadInterval)

	apiMux := api.BuildRoutes(api.Deps{
		Holder:     holder,
		Cache:      snapCache,
		Scoper:     scoper,
		Reloader:   reloader,
		AdminToken: cfg.AdminToken,
	})
	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		l.Info("shutdown_begin")
		_ = s.Shutdown(shutCtx)
	}()
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
