package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curemedix/admin"
	"curemedix/auth"
	"curemedix/banners"
	"curemedix/cart"
	"curemedix/categories"
	"curemedix/config"
	"curemedix/db"
	"curemedix/medicines"
	"curemedix/middleware"
	"curemedix/pay"
	"curemedix/ratelim"
	"curemedix/rdx"
	"curemedix/routes"
	"curemedix/stripe"
	"curemedix/users"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// Root greets like the original storefront did.
func Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "CureMedix server is healing you entirely!")
}

func setupRouter(cfg config.Config, store *db.Store) *httprouter.Router {
	rdxClient := rdx.Connect(cfg.RedisAddr)
	processor := stripe.New(cfg.StripeKey)
	secret := []byte(cfg.JwtSecret)

	mw := middleware.New(secret, store.UserRole)
	idem := middleware.NewIdempotency(store.Idempotency)
	rateLimiter := ratelim.NewRateLimiter(5, 10)

	router := httprouter.New()
	router.GET("/", Root)
	router.GET("/health", Index)

	routes.AddAuthRoutes(router, auth.NewService(secret), rateLimiter)
	routes.AddMedicineRoutes(router, medicines.NewService(store))
	routes.AddCategoryRoutes(router, categories.NewService(store), mw)
	routes.AddBannerRoutes(router, banners.NewService(store), mw)
	routes.AddUserRoutes(router, users.NewService(store), mw)
	routes.AddCartRoutes(router, cart.NewService(store))
	routes.AddPayRoutes(router, pay.NewService(store, rdxClient, processor, cfg.Currency, secret), mw, idem, rateLimiter)
	routes.AddAdminRoutes(router, admin.NewService(store, rdxClient), mw)

	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := store.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	router := setupRouter(cfg, store)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedCORS,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("🚀 CureMedix server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
