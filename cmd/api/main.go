package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/repuestos-live/internal/application/inventory"
	"github.com/jhoicas/repuestos-live/internal/infrastructure/snapshot"
	httpRouter "github.com/jhoicas/repuestos-live/internal/interfaces/http"
	"github.com/jhoicas/repuestos-live/internal/realtime"
	"github.com/jhoicas/repuestos-live/internal/store"
	"github.com/jhoicas/repuestos-live/pkg/config"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	snapshots := snapshot.NewRepository(cfg.Data.Path, log)
	items, nextID, err := snapshots.Load()
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo preparar el snapshot inicial")
	}
	log.Info().Int("items", len(items)).Str("path", cfg.Data.Path).Msg("inventario cargado")

	st := store.New(items, nextID)
	bus := realtime.NewBroadcaster(log)
	presence := realtime.NewPresence()
	svc := inventory.NewService(st, snapshots, bus, presence, log)

	// Sin Read/WriteTimeout: /events mantiene la respuesta abierta
	// indefinidamente y un WriteTimeout cortaría el stream.
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory: svc,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			// Único fallo fatal de arranque: no poder escuchar el puerto.
			log.Fatal().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	bus.Close()

	log.Info().Msg("aplicación detenida")
}
