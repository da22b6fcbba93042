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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mciskills/ai-foundations-lms/internal/api/http"
	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/config"
	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/session"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

func main() {
	cfg := config.FromEnv()

	// --- Store: remote when credentials are configured, local otherwise ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.DataDir, cfg.PollInterval)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer st.Close()

	if st.Online() {
		log.Printf("record store: remote database active")
	} else {
		log.Printf("record store: offline mode, local file under %s", cfg.DataDir)
	}

	// --- Session ---
	state, err := session.NewStateFile(cfg.DataDir)
	if err != nil {
		log.Fatalf("session state: %v", err)
	}
	mgr := session.NewManager(st, state, course.Default, cfg.AdminEmail)

	authSvc := auth.NewAuthService(cfg.AuthSecret)
	srv := api.NewServer(cfg, st, mgr, authSvc, course.Default)
	defer srv.Close()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Online() {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/api", srv.Routes())

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("gateway listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
