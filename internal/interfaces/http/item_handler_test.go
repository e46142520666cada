package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/repuestos-live/internal/application/inventory"
	"github.com/jhoicas/repuestos-live/internal/domain"
	"github.com/jhoicas/repuestos-live/internal/infrastructure/snapshot"
	apphttp "github.com/jhoicas/repuestos-live/internal/interfaces/http"
	"github.com/jhoicas/repuestos-live/internal/realtime"
	"github.com/jhoicas/repuestos-live/internal/store"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp construye una aplicación Fiber con el servicio completo
// cableado sobre un snapshot temporal.
func buildTestApp(t *testing.T) (*fiber.App, *inventory.Service) {
	t.Helper()
	log := logger.Nop()
	repo := snapshot.NewRepository(filepath.Join(t.TempDir(), "db.json"), log)
	svc := inventory.NewService(
		store.New(nil, 1),
		repo,
		realtime.NewBroadcaster(log),
		realtime.NewPresence(),
		log,
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Inventory: svc, Log: log})
	return app, svc
}

// postJSON lanza un POST con body JSON y devuelve la respuesta.
func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeItem(t *testing.T, resp *http.Response) domain.Item {
	t.Helper()
	defer resp.Body.Close()
	var item domain.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	return item
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /items
// ──────────────────────────────────────────────────────────────────────────────

func TestAddItem_Creado201(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := postJSON(t, app, "/items", map[string]any{
		"name": "Bolt M6", "quantity": 10, "minStock": 5, "addedBy": "Ana",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	item := decodeItem(t, resp)
	assert.Equal(t, 1, item.ID)
	assert.Equal(t, "Bolt M6", item.Name)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 5, item.MinStock)
}

func TestAddItem_SinNombre400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := postJSON(t, app, "/items", map[string]any{"quantity": 3})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode,
		"un artículo sin nombre no debe crearse")
}

func TestAddItem_BodyInvalido400(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte("{no json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /items
// ──────────────────────────────────────────────────────────────────────────────

func TestListItems_OrdenDeInsercion(t *testing.T) {
	app, _ := buildTestApp(t)
	postJSON(t, app, "/items", map[string]any{"name": "A"}).Body.Close()
	postJSON(t, app, "/items", map[string]any{"name": "B"}).Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []domain.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Name)
	assert.Equal(t, "B", items[1].Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// use / restock / delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUseItem_FlujoBoltM6(t *testing.T) {
	app, _ := buildTestApp(t)

	created := decodeItem(t, postJSON(t, app, "/items", map[string]any{
		"name": "Bolt M6", "quantity": 10, "minStock": 5,
	}))
	require.Equal(t, 10, created.Quantity)

	resp := postJSON(t, app, fmt.Sprintf("/items/%d/use", created.ID), map[string]any{
		"amount": 6, "usedBy": "Luis",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	item := decodeItem(t, resp)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, "Luis", item.LastUsedBy)
	assert.True(t, item.LowStock(), "4 <= minStock 5 dispara la condición de stock bajo")
}

func TestUseItem_NoEncontrado404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := postJSON(t, app, "/items/42/use", map[string]any{"amount": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUseItem_IDNoNumerico400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := postJSON(t, app, "/items/abc/use", map[string]any{"amount": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRestockItem_SumaSinLimite(t *testing.T) {
	app, _ := buildTestApp(t)
	created := decodeItem(t, postJSON(t, app, "/items", map[string]any{
		"name": "Junta", "quantity": 5,
	}))

	resp := postJSON(t, app, fmt.Sprintf("/items/%d/restock", created.ID), map[string]any{
		"amount": 100,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 105, decodeItem(t, resp).Quantity)
}

func TestRestockItem_NoEncontrado404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := postJSON(t, app, "/items/42/restock", map[string]any{"amount": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteItem_SuccessYLuego404(t *testing.T) {
	app, _ := buildTestApp(t)
	created := decodeItem(t, postJSON(t, app, "/items", map[string]any{"name": "Retén"}))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%d/delete", created.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.True(t, out["success"])

	// Repetir el delete: el id ya no resuelve
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%d/delete", created.ID), nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
