package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// UserEntry entrada de presencia visible para los clientes conectados.
type UserEntry struct {
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Presence registra los espectadores conectados en orden de llegada.
// La presencia es puramente transitoria: no se persiste y no guarda
// relación con la durabilidad del inventario. Varios espectadores pueden
// usar el mismo nombre; no es un sistema de identidad.
type Presence struct {
	mu      sync.Mutex
	order   []uuid.UUID
	entries map[uuid.UUID]UserEntry
}

// NewPresence construye un registro de presencia vacío.
func NewPresence() *Presence {
	return &Presence{entries: make(map[uuid.UUID]UserEntry)}
}

// Register agrega una entrada para el handle dado con la hora de conexión.
func (p *Presence) Register(id uuid.UUID, name string) UserEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := UserEntry{Name: name, ConnectedAt: time.Now().UTC()}
	if _, ok := p.entries[id]; !ok {
		p.order = append(p.order, id)
	}
	p.entries[id] = entry
	return entry
}

// Unregister elimina la entrada del handle. Es idempotente: un handle
// desconocido o ya eliminado es un no-op (protege contra la doble
// invocación en el teardown de la conexión).
func (p *Presence) Unregister(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[id]; !ok {
		return
	}
	delete(p.entries, id)
	for i, other := range p.order {
		if other == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Snapshot devuelve las entradas vivas en orden de llegada.
func (p *Presence) Snapshot() []UserEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]UserEntry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id])
	}
	return out
}

// Count cantidad de espectadores registrados.
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
