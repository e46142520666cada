// Package snapshot persiste el inventario como un único documento JSON
// {items, nextId} que se reescribe completo tras cada mutación.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/repuestos-live/internal/domain"
	"github.com/jhoicas/repuestos-live/pkg/logger"
)

// document forma serializada del snapshot.
type document struct {
	Items  []domain.Item `json:"items"`
	NextID int           `json:"nextId"`
}

// Repository escribe y lee el snapshot durable del inventario.
type Repository struct {
	path string
	log  *logger.Logger
}

// NewRepository construye el repositorio de snapshots sobre la ruta dada.
func NewRepository(path string, log *logger.Logger) *Repository {
	return &Repository{path: path, log: log}
}

// Path ruta del archivo de snapshot.
func (r *Repository) Path() string {
	return r.path
}

// Save reemplaza el snapshot anterior con la colección completa y el
// contador de IDs. Escribe a un archivo temporal y renombra, de modo que
// nunca queda un snapshot a medio escribir.
func (r *Repository) Save(items []domain.Item, nextID int) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.MarshalIndent(document{Items: items, NextID: nextID}, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio de datos: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "db-*.json.tmp")
	if err != nil {
		return fmt.Errorf("crear archivo temporal: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("escribir snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cerrar archivo temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("reemplazar snapshot: %w", err)
	}
	return nil
}

// Load lee el último snapshot. Si el archivo no existe escribe un snapshot
// inicial vacío y arranca con inventario vacío y nextID = 1. Un snapshot
// ilegible o corrupto también arranca vacío, pero sin sobreescribir el
// archivo dañado.
func (r *Repository) Load() ([]domain.Item, int, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.log.Info().Str("path", r.path).Msg("sin snapshot previo, iniciando inventario vacío")
		if err := r.Save(nil, 1); err != nil {
			return nil, 1, fmt.Errorf("crear snapshot inicial: %w", err)
		}
		return nil, 1, nil
	}
	if err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("snapshot ilegible, iniciando inventario vacío")
		return nil, 1, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("snapshot corrupto, iniciando inventario vacío")
		return nil, 1, nil
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc.Items, doc.NextID, nil
}
