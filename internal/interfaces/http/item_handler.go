package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/repuestos-live/internal/application/dto"
	"github.com/jhoicas/repuestos-live/internal/application/inventory"
	"github.com/jhoicas/repuestos-live/internal/domain"
)

// ItemHandler maneja las peticiones HTTP del inventario.
type ItemHandler struct {
	svc *inventory.Service
}

// NewItemHandler construye el handler.
func NewItemHandler(svc *inventory.Service) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List GET /items — colección completa en orden de inserción.
func (h *ItemHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.svc.List())
}

// Add POST /items — crea un artículo y difunde newItem.
func (h *ItemHandler) Add(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	item, err := h.svc.Add(in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el nombre es obligatorio"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Use POST /items/:id/use — descuenta unidades y difunde updateItem.
func (h *ItemHandler) Use(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UseItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	item, err := h.svc.Use(id, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(item)
}

// Restock POST /items/:id/restock — suma unidades y difunde updateItem.
func (h *ItemHandler) Restock(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.RestockItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	item, err := h.svc.Restock(id, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(item)
}

// Delete POST /items/:id/delete — elimina el artículo y difunde deleteItem.
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}

	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.DeleteItemResponse{Success: true})
}

func itemID(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("id"))
}
