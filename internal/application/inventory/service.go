package inventory

import (
	"strings"
	"sync"

	"github.com/jhoicas/repuestos-live/internal/application/dto"
	"github.com/jhoicas/repuestos-live/internal/domain"
	"github.com/jhoicas/repuestos-live/internal/infrastructure/snapshot"
	"github.com/jhoicas/repuestos-live/internal/realtime"
	"github.com/jhoicas/repuestos-live/internal/store"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// Nombre por defecto cuando el cliente no se identifica.
const anonymousName = "Anonymous"

// Service orquesta las mutaciones del inventario: valida la entrada, aplica
// la mutación al Store, persiste el snapshot y difunde el evento resultante.
//
// Un único mutex serializa mutación + persistencia + difusión y también las
// conexiones y desconexiones de espectadores. Esa disciplina de escritor
// único garantiza que dos suscriptores nunca observan los eventos de dos
// mutaciones en orden distinto, y que el snapshot init de una conexión
// tardía ya refleja toda mutación difundida antes de ella.
type Service struct {
	mu        sync.Mutex
	store     *store.Store
	snapshots *snapshot.Repository
	bus       *realtime.Broadcaster
	presence  *realtime.Presence
	log       *logger.Logger
}

// NewService construye el servicio de inventario.
func NewService(st *store.Store, snapshots *snapshot.Repository, bus *realtime.Broadcaster, presence *realtime.Presence, log *logger.Logger) *Service {
	return &Service{
		store:     st,
		snapshots: snapshots,
		bus:       bus,
		presence:  presence,
		log:       log,
	}
}

// List devuelve la colección completa en orden de inserción.
func (s *Service) List() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// Add crea un artículo nuevo y difunde newItem. El nombre es obligatorio;
// cantidad y umbral mínimo aceptan cero.
func (s *Service) Add(in dto.AddItemRequest) (domain.Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Item{}, domain.ErrInvalidInput
	}
	if in.AddedBy == "" {
		in.AddedBy = "Unknown"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.store.Create(store.CreateInput{
		Name:     in.Name,
		Location: in.Location,
		Quantity: in.Quantity,
		MinStock: in.MinStock,
		Notes:    in.Notes,
		AddedBy:  in.AddedBy,
	})
	s.persistLocked()
	s.bus.Send(dto.EventNewItem, item)

	s.log.Info().
		Int("id", item.ID).
		Str("name", item.Name).
		Str("addedBy", item.AddedBy).
		Msg("artículo agregado")
	return item, nil
}

// Use descuenta unidades de un artículo (saturando en cero) y difunde
// updateItem. Con ErrNotFound no se persiste ni se difunde nada.
func (s *Service) Use(id int, in dto.UseItemRequest) (domain.Item, error) {
	amount := in.Amount
	if amount == 0 {
		amount = 1
	}
	usedBy := in.UsedBy
	if usedBy == "" {
		usedBy = "Unknown"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Use(id, amount, usedBy)
	if err != nil {
		return domain.Item{}, err
	}
	s.persistLocked()
	s.bus.Send(dto.EventUpdateItem, item)

	if item.LowStock() {
		s.log.Warn().
			Int("id", item.ID).
			Str("name", item.Name).
			Int("quantity", item.Quantity).
			Int("minStock", item.MinStock).
			Msg("stock bajo")
	}
	return item, nil
}

// Restock suma unidades sin límite superior y difunde updateItem.
func (s *Service) Restock(id int, in dto.RestockItemRequest) (domain.Item, error) {
	amount := in.Amount
	if amount == 0 {
		amount = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.Restock(id, amount)
	if err != nil {
		return domain.Item{}, err
	}
	s.persistLocked()
	s.bus.Send(dto.EventUpdateItem, item)
	return item, nil
}

// Delete elimina el artículo y difunde deleteItem con el id. El id liberado
// nunca se reutiliza.
func (s *Service) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Delete(id)
	if err != nil {
		return err
	}
	s.persistLocked()
	s.bus.Send(dto.EventDeleteItem, dto.DeleteItemEvent{ID: id})

	s.log.Info().Int("id", id).Str("name", removed.Name).Msg("artículo eliminado")
	return nil
}

// Connect registra un espectador nuevo: lo suscribe al fan-out, lo anota en
// presencia, le encola el snapshot init y difunde la lista de presencia
// actualizada a todos. Corre bajo el mismo mutex que las mutaciones, de
// modo que el init refleja exactamente las mutaciones ya difundidas y el
// suscriptor nunca recibe el evento de una mutación anterior a su init.
func (s *Service) Connect(name string) *realtime.Subscription {
	if strings.TrimSpace(name) == "" {
		name = anonymousName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.bus.Subscribe(name)
	s.presence.Register(sub.ID, name)
	s.bus.SendTo(sub, dto.EventInit, s.store.List())
	s.bus.Send(dto.EventUsers, s.presence.Snapshot())

	s.log.Info().
		Str("subscriber", sub.ID.String()).
		Str("name", name).
		Int("connected", s.presence.Count()).
		Msg("espectador conectado")
	return sub
}

// Disconnect retira al espectador del fan-out y de presencia, y difunde la
// lista de presencia actualizada. Es idempotente: el teardown de una
// conexión puede dispararlo más de una vez.
func (s *Service) Disconnect(sub *realtime.Subscription) {
	if sub == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Unsubscribe(sub)
	s.presence.Unregister(sub.ID)
	s.bus.Send(dto.EventUsers, s.presence.Snapshot())

	s.log.Info().
		Str("subscriber", sub.ID.String()).
		Str("name", sub.Name).
		Int("connected", s.presence.Count()).
		Msg("espectador desconectado")
}

// Users lista de presencia actual en orden de llegada.
func (s *Service) Users() []realtime.UserEntry {
	return s.presence.Snapshot()
}

// persistLocked guarda el snapshot tras una mutación exitosa, antes de la
// difusión. Un fallo de escritura se registra y no interrumpe la mutación:
// el estado en memoria queda temporalmente por delante del durable.
func (s *Service) persistLocked() {
	items, nextID := s.store.Snapshot()
	if err := s.snapshots.Save(items, nextID); err != nil {
		s.log.Error().Err(err).Msg("guardando snapshot del inventario")
	}
}
