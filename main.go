package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"restaurant/config"
	"restaurant/controllers"
	"restaurant/middleware"
	"restaurant/orders"
	"restaurant/routes"
	"restaurant/store"
	"restaurant/utils"
)

func main() {
	settings := config.Load()
	logger := utils.NewLogger(settings.IsProduction())
	if err := settings.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info().Str("mode", gin.Mode()).Str("env", settings.Env).Msg("starting restaurant backend")

	db, err := config.ConnectDatabase(context.Background(), settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}

	images, err := utils.NewImageStore(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot initialise image storage")
	}

	location := settings.Location()
	tokens := utils.NewJWT(settings.JWTSecret, settings.JWTExpiration)

	users := store.NewUserRepo(db.Users)
	staff := store.NewStaffRepo(db.Staff)
	attendance := store.NewAttendanceRepo(db.Attendance)
	tables := store.NewTableRepo(db.Tables)
	categories := store.NewCategoryRepo(db.Categories)
	menu := store.NewMenuRepo(db.MenuItems)
	orderRepo := store.NewOrderRepo(db.Orders)
	payments := store.NewPaymentRepo(db.Payments)
	inventory := store.NewInventoryRepo(db.Inventory)
	restaurant := store.NewRestaurantRepo(db.Restaurants)
	audit := store.NewAuditRepo(db.Sessions, db.AuditLogs)
	dashboard := store.NewDashboardRepo(db.Orders, db.Tables, db.MenuItems, db.Staff, db.Attendance)

	service := orders.NewService(orderRepo, tables, menu, payments, logger)

	r := gin.New()
	r.Use(middleware.LoggerMiddleware(logger))

	middleware.InitMetrics()
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", middleware.MetricsHandler(settings.MetricsAllow))

	corsConfig := cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
	})
	if !settings.S3.Enabled() {
		r.Static("/uploads", settings.UploadDir)
	}

	routes.InitializeRoutes(r,
		routes.Dependencies{Tokens: tokens, Audit: audit, Logger: logger},
		routes.Controllers{
			Auth:      controllers.NewAuthController(users, staff, audit, tokens, settings.JWTExpiration, settings.IsProduction(), logger),
			Users:     controllers.NewUserController(users),
			Menu:      controllers.NewMenuController(menu, categories, images),
			Tables:    controllers.NewTableController(tables),
			Orders:    controllers.NewOrderController(service),
			Payments:  controllers.NewPaymentController(service, payments),
			Staff:     controllers.NewStaffController(staff, attendance, images, location),
			Inventory: controllers.NewInventoryController(inventory),
			Dashboard: controllers.NewDashboardController(dashboard, menu, location, settings.LowStockThreshold),
			Settings:  controllers.NewSettingsController(restaurant, audit, images),
		},
	)

	scheduler, err := utils.StartScheduler(&utils.Jobs{
		Attendance: attendance,
		Menu:       menu,
		Mailer:     utils.NewMailer(settings.SMTP),
		AlertEmail: settings.AlertEmail,
		Threshold:  settings.LowStockThreshold,
		Location:   location,
		Logger:     logger.With().Str("component", "scheduler").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start scheduler")
	}

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", settings.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("database disconnect failed")
	}
}
