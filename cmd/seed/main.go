package main

import (
	"context"
	"log"
	"os"

	"github.com/Gabito0/yodlr-backend/internal/config"
	"github.com/Gabito0/yodlr-backend/internal/db"
	"github.com/Gabito0/yodlr-backend/internal/model"
	"github.com/Gabito0/yodlr-backend/internal/repository"
	"github.com/Gabito0/yodlr-backend/internal/service"
)

// Seed creates an initial admin account plus a few pending sample users. The
// admin path here is the only way to mint the first admin; registration over
// HTTP never grants the flag.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewUserRepository(gormDB)
	users := service.NewUserService(repo, nil)

	ctx := context.Background()

	adminEmail := getenv("ADMIN_EMAIL", "admin@yodlr.com")
	adminPassword := getenv("ADMIN_PASSWORD", "admin-password")

	admin, err := users.Add(ctx, adminEmail, adminPassword, "Admin", "User", true, model.StateActive)
	if err != nil {
		log.Printf("Skipping admin %s: %v", adminEmail, err)
	} else {
		log.Printf("Created admin user id=%d email=%s", admin.ID, admin.Email)
	}

	samples := []struct {
		email, password, first, last string
	}{
		{"kyle@getyodlr.com", "sample-password", "Kyle", "White"},
		{"jane@getyodlr.com", "sample-password", "Jane", "Stone"},
		{"lilly@getyodlr.com", "sample-password", "Lilly", "Smith"},
	}

	for _, s := range samples {
		user, err := users.Register(ctx, s.email, s.password, s.first, s.last)
		if err != nil {
			log.Printf("Skipping %s: %v", s.email, err)
			continue
		}
		log.Printf("Created user id=%d email=%s state=%s", user.ID, user.Email, user.State)
	}

	log.Println("Seed completed")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
