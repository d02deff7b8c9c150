package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"postmetrics/internal/adapters/web"
	"postmetrics/internal/app"
	"postmetrics/internal/config"
	"postmetrics/pkg/log"
	"postmetrics/pkg/log/transporters"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before reading the environment")
	staticDir := flag.String("static", "./static", "directory served under /static")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), config.Description())
	}
	flag.Parse()

	if err := run(*envFile, *staticDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile, staticDir string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger := log.New(cfg.LogLevel(), transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	components, err := app.New(cfg)
	if err != nil {
		log.GlobalError("failed to build components", "error", err)
		return err
	}
	defer components.Close()

	handlers := web.NewHandlers(components.Fetch, components.Batch, int64(cfg.Server.UploadLimitMB)<<20)

	server := fiber.New(fiber.Config{
		AppName:      "postmetrics",
		BodyLimit:    (cfg.Server.UploadLimitMB + 1) << 20,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	server.Use(recover.New())
	server.Use(requestid.New(web.RequestIDConfig()))
	server.Use(web.RequestIDToContextMiddleware())
	server.Use(web.RequestLoggerMiddleware())

	web.SetupRoutes(server, handlers, staticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.GlobalInfo("server starting", "port", cfg.Server.Port, "engine", cfg.Browser.Engine)
		errCh <- server.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		log.GlobalError("server stopped", "error", err)
		return err
	case <-ctx.Done():
	}

	log.GlobalInfo("shutting down")
	if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.GlobalError("shutdown failed", "error", err)
		return err
	}
	return nil
}
