package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmrzaf/datacraft/internal/api"
	"github.com/mmrzaf/datacraft/internal/app"
	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/mmrzaf/datacraft/internal/logging"
	"github.com/mmrzaf/datacraft/internal/registry"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	projectDir := flag.String("project-dir", cfg.ProjectDir, "Directory holding .datacraftrc")
	runsDB := flag.String("runs-db", cfg.RunsDBPath, "Run history database (sqlite path or postgres URL)")
	bindAddr := flag.String("bind", cfg.BindAddr, "Bind address")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	batchSize := flag.Int("batch-size", cfg.BatchSize, "Default insert batch size")
	watch := flag.Bool("watch", true, "Reload .datacraftrc when it changes")
	flag.Parse()

	logger := logging.NewLogger(*logLevel).WithComponent("api_main")
	defer func() { _ = logger.Sync() }()

	templateRepo := templates.NewFileRepository(*projectDir)
	if rc := templateRepo.RC(); rc.Status == config.RCInvalid {
		logger.Warnw("startup.rc_invalid", map[string]any{"path": rc.Path, "error": rc.Err.Error()})
	}

	runRepo := runs.Open(*runsDB)
	if err := runRepo.Init(); err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_run_repo"})
		os.Exit(1)
	}
	defer runRepo.Close()

	runService := app.NewRunService(templateRepo, runRepo, registry.DefaultGeneratorRegistry(), logger, *batchSize)

	mux := http.NewServeMux()
	api.NewHandler(runService).Register(mux)

	srv := &http.Server{
		Addr:              *bindAddr,
		Handler:           loggingMiddleware(logger.WithComponent("http"), mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infow("startup.listening", map[string]any{"bind": *bindAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Infow("shutdown.started", nil)
		return srv.Shutdown(shutdownCtx)
	})
	if *watch {
		g.Go(func() error {
			return templateRepo.Watch(ctx, logger.WithComponent("rc_watcher"))
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorw("server.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Infow("shutdown.completed", nil)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": time.Since(started).Milliseconds(),
			"remote":      r.RemoteAddr,
		}
		if sw.status >= 500 {
			logger.Errorw("request.completed", fields)
			return
		}
		if sw.status >= 400 {
			logger.Warnw("request.completed", fields)
			return
		}
		logger.Infow("request.completed", fields)
	})
}
