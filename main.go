package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"Erosion/internal/auth"
	"Erosion/internal/calc/batch"
	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/report"
	"Erosion/internal/calc/sheet"
	"Erosion/internal/calc/stream"
	"Erosion/internal/config"
	"Erosion/internal/history"
	"Erosion/internal/logger"
	"Erosion/internal/metrics"
	"Erosion/internal/repo"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func HandleList(router *mux.Router, cfg config.Config, eng *engine.Engine, st repo.Repository) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: st, Insecure: cfg.Server.InsecureCookies}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)

	calcH := &engine.Handler{Engine: eng, Runs: st}
	batchH := &batch.Handler{Calc: calcH, MaxRequests: cfg.Server.MaxBatch}
	sheetH := &sheet.Handler{Calc: calcH}
	reportH := &report.Handler{Calc: calcH}
	historyH := &history.Handler{Runs: st}
	streamH := stream.NewHandler(calcH)
	streamH.Upgrader.CheckOrigin = func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return cfg.Server.AllowedOrigin == "*" || o == "" || o == cfg.Server.AllowedOrigin
	}

	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/tools/erosion/types", calcH.Types).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/tools/erosion/calc", calcH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/erosion/batch", batchH.Batch).Methods("POST")
	secureApi.HandleFunc("/tools/erosion/import", sheetH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/erosion/export", sheetH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/erosion/report", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/erosion/ws", streamH.Serve).Methods("GET")

	secureApi.HandleFunc("/runs", historyH.List).Methods("GET")
	secureApi.HandleFunc("/runs/{id:[0-9]+}", historyH.Get).Methods("GET")
	secureApi.HandleFunc("/runs/{id:[0-9]+}/report", historyH.Report).Methods("GET")
}

func openStore(ctx context.Context, cfg config.Config) (repo.Repository, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage, users and runs are lost on restart")
		return repo.NewMemory(), func() {}, nil
	}
	db, err := auth.InitDB(cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := repo.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

func main() {
	confPath := flag.String("config", config.DefaultPath, "settings file")
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		log.Fatalf("logger: %v", err)
	}
	if cfg.TokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tables, err := curves.Load(cfg.TablesPath)
	if err != nil {
		log.Fatalf("curve tables: %v", err)
	}
	eng, err := engine.New(cfg.Engine, tables)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	router := mux.NewRouter()
	HandleList(router, cfg, eng, st)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: metrics.Middleware(CORS(cfg.Server.AllowedOrigin, router)),
	}

	log.WithFields(log.Fields{
		"addr":           cfg.Server.Addr,
		"tables":         tables.Version(),
		"engine_version": engine.Version,
		"storage":        cfg.Storage.Driver,
	}).Info("starting erosion server")

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.Server.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	wg.Wait()
	log.Info("server stopped")
}
