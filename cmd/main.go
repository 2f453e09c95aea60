package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/auth"
	"github.com/franciscosanchezn/store-ratings-api/internal/config"
	"github.com/franciscosanchezn/store-ratings-api/internal/database"
	"github.com/franciscosanchezn/store-ratings-api/internal/router"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// @title Store Ratings API
// @version 1.0
// @description Users rate stores, store owners follow their ratings, administrators manage both.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)

	tokens := auth.NewTokenManager(configuration.JWTSecret, configuration.JWTExpiry)
	registry := services.NewRegistry(db, services.NewBcryptHasher(configuration.BcryptCost), tokens)

	seedAdmin(configuration, registry.Users)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", configuration.Host, configuration.Port),
		Handler:           router.New(configuration, registry, tokens),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := database.Close(db); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
	log.Info("Server exited")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL overrides the environment default.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	switch conf.Environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if conf.LogLevel != "" {
		level, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			log.Warnf("Ignoring invalid LOG_LEVEL %q", conf.LogLevel)
		} else {
			log.SetLevel(level)
		}
	}
	database.SetLogLevel(log.GetLevel())
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects with retries and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(context.Background(), database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// seedAdmin creates the configured administrator on first start
func seedAdmin(conf *config.Config, users services.UserService) {
	if conf.AdminEmail == "" || conf.AdminPassword == "" {
		log.Debug("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	_, created, err := users.EnsureAdmin(context.Background(), services.NewUserInput{
		Name:     conf.AdminName,
		Email:    conf.AdminEmail,
		Password: conf.AdminPassword,
		Address:  conf.AdminAddress,
	})
	checkPanicErr(err)
	if !created {
		log.Info("Admin user already present")
	}
}
