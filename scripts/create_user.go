package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/store-ratings-api/internal/config"
	"github.com/franciscosanchezn/store-ratings-api/internal/database"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/joho/godotenv"
)

// Creates a development account of any role in the configured database
func main() {
	// Parse command line flags
	role := flag.String("role", "admin", "User role (admin, store_owner or user)")
	name := flag.String("name", "", "Display name, defaults to '<role> User'")
	email := flag.String("email", "", "Login email, defaults to '<role>@example.com'")
	password := flag.String("password", "Dev@12345", "Login password")
	address := flag.String("address", "Dev Address", "Postal address")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if !models.Role(*role).Valid() {
		log.Fatalf("Unknown role %q", *role)
	}
	if *name == "" {
		*name = fmt.Sprintf("%s User", models.Role(*role).Label())
	}
	if *email == "" {
		*email = fmt.Sprintf("%s@example.com", *role)
	}

	ctx := context.Background()
	db, err := database.InitDatabase(ctx, database.DatabaseConfig{
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
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	users := services.NewUserService(db, services.NewBcryptHasher(conf.BcryptCost))

	// Check if the account already exists
	if existing, err := users.GetUserByEmail(ctx, *email); err == nil {
		fmt.Printf("User already exists: %s (ID: %d, Role: %s)\n", existing.Email, existing.ID, existing.Role)
		return
	}

	user, err := users.CreateUser(ctx, services.NewUserInput{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Address:  *address,
		Role:     models.Role(*role),
	})
	if err != nil {
		log.Fatal("Failed to create user:", err)
	}

	fmt.Printf("Created user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:%d%s/login \\\n", conf.Port, conf.APIBasePath)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", *email, *password)
}
