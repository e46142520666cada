package store

import (
	"time"

	"github.com/jhoicas/repuestos-live/internal/domain"
)

// Store mantiene la colección canónica de artículos en memoria, en orden de
// inserción, junto con el contador monotónico de IDs. Un ID emitido nunca se
// vuelve a emitir, ni siquiera después de borrar el artículo.
//
// El Store no es seguro para uso concurrente por sí mismo: todas las
// mutaciones pasan por el Service de inventario, que serializa
// mutación + persistencia + difusión bajo un único mutex.
type Store struct {
	items  []domain.Item
	nextID int
}

// CreateInput campos aceptados al crear un artículo.
type CreateInput struct {
	Name     string
	Location string
	Quantity int
	MinStock int
	Notes    string
	AddedBy  string
}

// New construye un Store a partir del último snapshot cargado.
// Con nextID < 1 (snapshot ausente) el contador arranca en 1.
func New(items []domain.Item, nextID int) *Store {
	if nextID < 1 {
		nextID = 1
	}
	s := &Store{
		items:  make([]domain.Item, len(items)),
		nextID: nextID,
	}
	copy(s.items, items)
	return s
}

// Create asigna el siguiente ID, sella los timestamps y agrega el artículo
// al final de la colección.
func (s *Store) Create(in CreateInput) domain.Item {
	now := time.Now().UTC()
	item := domain.Item{
		ID:          s.nextID,
		Name:        in.Name,
		Location:    in.Location,
		Quantity:    in.Quantity,
		MinStock:    in.MinStock,
		Notes:       in.Notes,
		AddedBy:     in.AddedBy,
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.nextID++
	s.items = append(s.items, item)
	return item
}

// Get devuelve una copia del artículo con ese ID.
func (s *Store) Get(id int) (domain.Item, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, false
	}
	return s.items[idx], true
}

// Use descuenta amount unidades saturando en cero: consumir más de lo que
// hay no es un error, deja la cantidad en cero.
func (s *Store) Use(id, amount int, usedBy string) (domain.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, domain.ErrNotFound
	}
	item := &s.items[idx]
	item.Quantity -= amount
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	item.LastUsedBy = usedBy
	item.LastUpdated = time.Now().UTC()
	return *item, nil
}

// Restock suma amount unidades sin límite superior.
func (s *Store) Restock(id, amount int) (domain.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, domain.ErrNotFound
	}
	item := &s.items[idx]
	item.Quantity += amount
	item.LastUpdated = time.Now().UTC()
	return *item, nil
}

// Delete elimina el artículo y devuelve la copia eliminada. El ID liberado
// no se reutiliza: el contador nunca retrocede.
func (s *Store) Delete(id int) (domain.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, domain.ErrNotFound
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return removed, nil
}

// List devuelve una copia de la colección en orden de inserción.
func (s *Store) List() []domain.Item {
	out := make([]domain.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Snapshot devuelve la colección y el contador para persistir.
func (s *Store) Snapshot() ([]domain.Item, int) {
	return s.List(), s.nextID
}

// Len cantidad de artículos vivos.
func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
