package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/firewatch/firewatch-risk-api/internal/analysis"
	"github.com/firewatch/firewatch-risk-api/internal/api"
	"github.com/firewatch/firewatch-risk-api/internal/notification"
	"github.com/firewatch/firewatch-risk-api/internal/properties"
	"github.com/firewatch/firewatch-risk-api/internal/sentinel"
	"github.com/firewatch/firewatch-risk-api/internal/weather"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func printBanner() {
	banner := figure.NewFigure("Firewatch", "isometric1", true)
	bannercolor.Red(banner.String())
	fmt.Println()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	satellite, err := sentinel.NewClient(ctx)
	if err != nil {
		log.Fatalf("failed to create satellite client: %v", err)
	}
	weatherProvider := weather.NewCachedGridProvider(weather.NewOpenMeteoClient())
	service := analysis.NewService(satellite, weatherProvider)

	app := fiber.New(fiber.Config{
		AppName:               "firewatch-risk-api",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, r interface{}) {
			message := fmt.Sprintf("Firewatch API panic:\n\n%v\n\nStack trace:\n%s", r, debug.Stack())
			if err := notification.SendDiscordErrorNotification(message); err != nil {
				log.Printf("failed to send panic notification: %v", err)
			}
		},
	}))

	api.RegisterRoutes(app, service)

	port := properties.ServerPort()
	go func() {
		log.Printf("Server listening on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
