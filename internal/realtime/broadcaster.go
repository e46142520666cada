package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// Capacidad del buffer de frames por suscriptor. Un suscriptor que no drena
// su canal antes de llenarlo se considera colgado y se elimina del fan-out.
const subscriptionBuffer = 64

// Subscription canal de salida hacia un espectador conectado. Los frames ya
// vienen codificados en formato SSE (event: <nombre>\ndata: <json>\n\n).
type Subscription struct {
	ID   uuid.UUID
	Name string

	frames chan []byte
	once   sync.Once
}

// Frames canal de lectura de frames SSE. Se cierra al cancelar la
// suscripción o al apagar el broadcaster.
func (s *Subscription) Frames() <-chan []byte {
	return s.frames
}

func (s *Subscription) closeFrames() {
	s.once.Do(func() { close(s.frames) })
}

// Broadcaster mantiene el conjunto de suscripciones vivas y reparte cada
// evento a todas en orden de llegada. La entrega es "al menos encolada":
// encola el frame en el canal de cada suscriptor sin esperar a que el
// transporte lo escriba, y un suscriptor con el buffer lleno se descarta
// sin afectar a los demás.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	closed bool
	log    *logger.Logger
}

// NewBroadcaster construye un broadcaster sin suscriptores.
func NewBroadcaster(log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[uuid.UUID]*Subscription),
		log:  log,
	}
}

// Subscribe registra una nueva suscripción y la agrega al fan-out.
func (b *Broadcaster) Subscribe(name string) *Subscription {
	sub := &Subscription{
		ID:     uuid.New(),
		Name:   name,
		frames: make(chan []byte, subscriptionBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.closeFrames()
		return sub
	}
	b.subs[sub.ID] = sub
	return sub
}

// Unsubscribe saca la suscripción del fan-out y cierra su canal. Es
// idempotente y seguro en cualquier momento; los frames ya encolados que no
// alcanzaron a escribirse se pierden en silencio.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subs, sub.ID)
	b.mu.Unlock()
	sub.closeFrames()
}

// Send codifica el evento una sola vez y lo encola en cada suscripción
// viva. Un suscriptor con el buffer lleno se registra en el log y se
// elimina; la entrega a los demás no se ve afectada.
func (b *Broadcaster) Send(event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("serializando evento")
		return
	}

	b.mu.Lock()
	var stale []*Subscription
	for _, sub := range b.subs {
		select {
		case sub.frames <- frame:
		default:
			stale = append(stale, sub)
		}
	}
	for _, sub := range stale {
		delete(b.subs, sub.ID)
		sub.closeFrames()
		b.log.Warn().
			Str("subscriber", sub.ID.String()).
			Str("name", sub.Name).
			Str("event", event).
			Msg("suscriptor sin drenar su buffer, eliminado del fan-out")
	}
	b.mu.Unlock()
}

// SendTo encola un evento solo en la suscripción indicada. Se usa para el
// snapshot init al conectar; el resto de los eventos va por Send.
func (b *Broadcaster) SendTo(sub *Subscription, event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("serializando evento")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.ID]; !ok {
		// suscripción ya cancelada: su canal puede estar cerrado
		return
	}
	select {
	case sub.frames <- frame:
	default:
		b.log.Warn().
			Str("subscriber", sub.ID.String()).
			Str("event", event).
			Msg("buffer lleno en envío directo, frame descartado")
	}
}

// Count cantidad de suscripciones vivas.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close cierra todas las suscripciones y rechaza las futuras. Ruta de
// apagado del proceso.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.closeFrames()
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, data), nil
}
