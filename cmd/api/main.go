package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/cache"
	"grocery-mart/internal/catalog"
	"grocery-mart/internal/config"
	"grocery-mart/internal/database"
	"grocery-mart/internal/jobs"
	"grocery-mart/internal/repository"
	"grocery-mart/internal/repository/memory"
	"grocery-mart/internal/routes"
	"grocery-mart/internal/service"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := openStore(ctx, cfg)

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Auth setup failed: %v", err)
	}

	manifest, err := catalog.Load(cfg.ImageManifest)
	if err != nil {
		log.Fatalf("❌ Image manifest: %v", err)
	}
	log.Printf("🖼️ Image manifest loaded (%d products)", manifest.Len())

	c := cache.New(cfg.CacheTTL)
	defer c.Close()

	svc := service.New(repos, c, service.Options{
		UndoWindow:     cfg.UndoWindow,
		MostSellerTopN: cfg.MostSellerTopN,
		AdminEmails:    cfg.AdminEmails,
		Manifest:       manifest,
	})

	scheduler, err := jobs.Start(jobs.Config{
		MostSellerRefresh: cfg.MostSellerRefresh,
		PendingSweep:      cfg.PendingSweep,
		PendingMaxAge:     cfg.PendingMaxAge,
	}, svc.MostSellers, svc.Orders)
	if err != nil {
		log.Fatalf("❌ Cron setup failed: %v", err)
	}
	defer scheduler.Stop()

	router := gin.Default()
	routes.RegisterRoutes(router, cfg, svc, verifier)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Println("🚀 Server running on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Shutdown: %v", err)
	}
}

// openStore usa MongoDB si hay MONGO_URI; si no, el store en memoria
func openStore(ctx context.Context, cfg *config.Config) repository.Set {
	if cfg.MongoURI == "" {
		log.Println("🧪 MONGO_URI not set, using in-memory store")
		return memory.New().Set()
	}

	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		log.Fatalf("❌ Index setup failed: %v", err)
	}
	return repository.NewMongoSet(client, db)
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.AuthMode == "jwt" {
		log.Println("🔑 Using HS256 JWT verifier")
		return auth.NewJWTVerifier(cfg.JWTSecret)
	}
	log.Println("🔥 Using Firebase ID token verifier")
	return auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON)
}
