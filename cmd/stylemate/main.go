package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/stylemate/platform/internal/api/handlers"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/cache"
	"github.com/stylemate/platform/internal/config"
	"github.com/stylemate/platform/internal/health"
	"github.com/stylemate/platform/internal/metrics"
	repository "github.com/stylemate/platform/internal/repositories"
	service "github.com/stylemate/platform/internal/services"
	"github.com/stylemate/platform/internal/telemetry"
	"github.com/stylemate/platform/pkg/email"
	"github.com/stylemate/platform/pkg/payments"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	appCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	rateLimitRepo := repository.NewRateLimitRepo(redisClient, cfg)
	otpRepo := repository.NewOTPRepo(redisClient, cfg)

	paymentsClient := payments.NewStripeClient(cfg.Stripe.APIKey)
	mailService := email.NewService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	userService := service.NewUserService(repos.User, rateLimitRepo, otpRepo, mailService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	appointmentService := service.NewAppointmentService(repos.Appointment, repos.User, appCache, mailService, cfg.Cache.SlotsTTL)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	cartService := service.NewCartService(repos.Cart, repos.Product, repos.Coupon, appCache)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutService := service.NewCheckoutService(repos.Cart, paymentsClient, appCache, cfg.Stripe.Currency)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{Payments: paymentsClient})
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("POST /api/v1/users/otp/request", userHandler.RequestOTP())
	routerMux.HandleFunc("POST /api/v1/users/otp/verify", userHandler.VerifyOTP())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("GET /api/v1/salons/{salonId}/available-slots", appointmentHandler.AvailableSlots())
	routerMux.HandleFunc("GET /api/v1/customer/appointments", authMiddleware.RequireCustomer(appointmentHandler.List()))
	routerMux.HandleFunc("PATCH /api/v1/customer/appointments/{id}/reschedule", authMiddleware.RequireCustomer(appointmentHandler.Reschedule()))
	routerMux.HandleFunc("DELETE /api/v1/customer/appointments/{id}", authMiddleware.RequireCustomer(appointmentHandler.Cancel()))
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.RequireCustomer(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart", authMiddleware.RequireCustomer(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{itemId}", authMiddleware.RequireCustomer(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{itemId}", authMiddleware.RequireCustomer(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/cart/apply-coupon", authMiddleware.RequireCustomer(cartHandler.ApplyCoupon()))
	routerMux.HandleFunc("POST /api/v1/checkout", authMiddleware.RequireCustomer(checkoutHandler.Checkout()))
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "stylemate-platform")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
