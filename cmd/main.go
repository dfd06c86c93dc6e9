package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/DENNISVILL/makipartner/internal/app"
	"github.com/DENNISVILL/makipartner/internal/config"
	"github.com/DENNISVILL/makipartner/internal/controllers"
	"github.com/DENNISVILL/makipartner/internal/middleware"
	"github.com/DENNISVILL/makipartner/internal/provider"
	"github.com/DENNISVILL/makipartner/internal/repositories"
	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

const (
	appName = "makipartner-gateway"
	version = "1.0.0"
)

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadConfig(appName)

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)
	blacklistRepo := repositories.NewTokenBlacklistRepository(application.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(application.DB)
	rateLimitRepo := repositories.NewRateLimitRepository(application.DB)

	var rateLimitCache repositories.RateLimitCache
	if application.Redis != nil {
		rateLimitCache = repositories.NewRateLimitCache(application.Redis)
	}

	businessProvider := provider.NewPgProvider(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	jwtService := services.NewJWTService(cfg, blacklistRepo, userRepo)
	authService := services.NewAuthService(jwtService, userRepo, blacklistRepo, refreshTokenRepo, cfg)
	rateLimiterService := services.NewRateLimiterService(rateLimitCache, rateLimitRepo, cfg)
	tokenCleanupService := services.NewTokenCleanupService(blacklistRepo, refreshTokenRepo)
	rateLimitCleanupService := services.NewRateLimitCleanupService(rateLimitRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(authService)
	salesController := controllers.NewSalesController(businessProvider)
	financeController := controllers.NewFinanceController(businessProvider)
	dashboardController := controllers.NewDashboardController(businessProvider)
	healthController := controllers.NewHealthController(appName, version)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()
	router.Use(middleware.RequestLogMiddleware)

	authGuard := middleware.AuthMiddleware(jwtService)
	rateLimit := func(scope string) mux.MiddlewareFunc {
		return middleware.RateLimitMiddleware(rateLimiterService, scope)
	}

	v1 := router.PathPrefix("/api/v1").Subrouter()

	// Health / info (no auth, IP-keyed limits)
	healthRouter := v1.PathPrefix("/health").Subrouter()
	healthRouter.Use(rateLimit(config.ScopeHealth))
	healthRouter.HandleFunc("", healthController.Health).Methods("GET")

	infoRouter := v1.PathPrefix("/info").Subrouter()
	infoRouter.Use(rateLimit(config.ScopeInfo))
	infoRouter.HandleFunc("", healthController.Info).Methods("GET")

	// Public auth endpoints. Logout sits here because it must accept
	// expired tokens; it extracts the bearer token itself.
	authPublic := v1.PathPrefix("/auth").Subrouter()
	authPublic.Use(rateLimit(config.ScopeAuth))
	authPublic.HandleFunc("/login", authController.Login).Methods("POST")
	authPublic.HandleFunc("/refresh", authController.Refresh).Methods("POST")
	authPublic.HandleFunc("/logout", authController.Logout).Methods("POST")

	// Protected auth endpoints: auth first so the rate-limit key is the
	// user ID rather than the IP.
	meRouter := v1.PathPrefix("/auth/me").Subrouter()
	meRouter.Use(authGuard, rateLimit(config.ScopeMe))
	meRouter.HandleFunc("", authController.Me).Methods("GET")

	passwordRouter := v1.PathPrefix("/auth/change-password").Subrouter()
	passwordRouter.Use(authGuard, rateLimit(config.ScopeChangePassword))
	passwordRouter.HandleFunc("", authController.ChangePassword).Methods("POST")

	// Business reads (bearer-protected, user-keyed limits)
	business := v1.NewRoute().Subrouter()
	business.Use(authGuard, rateLimit(config.ScopeBusiness))
	business.HandleFunc("/sales/orders", salesController.ListOrders).Methods("GET")
	business.HandleFunc("/sales/orders/{id}", salesController.GetOrder).Methods("GET")
	business.HandleFunc("/sales/customers", salesController.ListCustomers).Methods("GET")
	business.HandleFunc("/finance/invoices", financeController.ListInvoices).Methods("GET")
	business.HandleFunc("/dashboard/overview", dashboardController.Overview).Methods("GET")

	//----------------------------------------------------------------------
	// Setup daily cleanup via cron
	//----------------------------------------------------------------------
	cronRunner := cron.New()

	_, schErr1 := cronRunner.AddFunc("0 3 * * *", func() {
		if e := tokenCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled token cleanup failed")
		}
	})
	if schErr1 != nil {
		utils.Logger.WithError(schErr1).Fatal("Failed to schedule token cleanup job")
	}

	_, schErr2 := cronRunner.AddFunc("5 3 * * *", func() {
		if e := rateLimitCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled rate limit counter cleanup failed")
		}
	})
	if schErr2 != nil {
		utils.Logger.WithError(schErr2).Fatal("Failed to schedule rate limit counter cleanup job")
	}

	cronRunner.Start()

	//----------------------------------------------------------------------
	// CORS + serve
	//----------------------------------------------------------------------
	allowedOrigins := []string{"*"}
	if cfg.CORSAllowedOrigin != "" {
		allowedOrigins = []string{cfg.CORSAllowedOrigin}
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSAllowedOrigin != "",
	})

	utils.Logger.Infof("Starting %s on port: %s", appName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
