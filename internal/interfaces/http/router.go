package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/repuestos-live/internal/application/inventory"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inventory *inventory.Service
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	items := NewItemHandler(deps.Inventory)
	events := NewEventsHandler(deps.Inventory, deps.Log)

	app.Get("/items", items.List)
	app.Post("/items", items.Add)
	app.Post("/items/:id/use", items.Use)
	app.Post("/items/:id/restock", items.Restock)
	app.Post("/items/:id/delete", items.Delete)

	app.Get("/events", events.Stream)
}
