package http

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/repuestos-live/internal/application/inventory"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// Intervalo del frame de keepalive. SSE no tiene lado de lectura, así que
// una conexión muerta solo se detecta al escribir; el ping acota ese tiempo.
const keepaliveInterval = 25 * time.Second

// EventsHandler expone el stream SSE GET /events.
type EventsHandler struct {
	svc *inventory.Service
	log *logger.Logger
}

// NewEventsHandler construye el handler del stream.
func NewEventsHandler(svc *inventory.Service, log *logger.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, log: log}
}

// Stream GET /events?name=<nombre> — suscripción de larga vida.
//
// El servidor envía init con la lista completa de artículos de inmediato y
// después users, newItem, updateItem y deleteItem a medida que ocurren. El
// frame de keepalive es un comentario SSE, invisible para EventSource.
// Cualquier error de escritura termina el stream y dispara la limpieza de
// presencia; el cliente reintenta la conexión tras un retardo fijo.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	name := c.Query("name")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sub := h.svc.Connect(name)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.svc.Disconnect(sub)

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case frame, ok := <-sub.Frames():
				if !ok {
					return
				}
				if err := writeAndFlush(w, frame); err != nil {
					h.log.Debug().
						Err(err).
						Str("subscriber", sub.ID.String()).
						Msg("escritura al suscriptor falló, cerrando stream")
					return
				}
			case <-ticker.C:
				if err := writeAndFlush(w, []byte(": ping\n\n")); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeAndFlush(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
