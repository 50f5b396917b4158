package main

import (
	"log"
	"net/http"

	_ "github.com/Gabito0/yodlr-backend/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Gabito0/yodlr-backend/internal/auth"
	"github.com/Gabito0/yodlr-backend/internal/cache"
	"github.com/Gabito0/yodlr-backend/internal/config"
	"github.com/Gabito0/yodlr-backend/internal/db"
	"github.com/Gabito0/yodlr-backend/internal/handler"
	"github.com/Gabito0/yodlr-backend/internal/model"
	"github.com/Gabito0/yodlr-backend/internal/repository"
	"github.com/Gabito0/yodlr-backend/internal/router"
	"github.com/Gabito0/yodlr-backend/internal/service"
)

// @title Yodlr User API
// @version 1.0
// @description User registration, authentication and management API with bearer-token auth.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := repository.NewUserRepository(gormDB)
	userService := service.NewUserService(userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(userService, codec)
	userHandler := handler.NewUserHandler(userService)

	router.Register(e, codec, authHandler, userHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
