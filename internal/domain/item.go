package domain

import "time"

// Item representa un repuesto del inventario compartido.
// Los tags JSON están en camelCase porque son el formato del stream de
// eventos y de la API: los clientes los consumen tal cual.
type Item struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"minStock"`
	Notes       string    `json:"notes"`
	AddedBy     string    `json:"addedBy"`
	LastUsedBy  string    `json:"lastUsedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// LowStock indica si el artículo está en o por debajo de su umbral mínimo.
// MinStock = 0 significa que no hay umbral configurado.
func (i Item) LowStock() bool {
	return i.MinStock > 0 && i.Quantity <= i.MinStock
}
