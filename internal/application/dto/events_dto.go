package dto

// Nombres de evento del stream /events. Los clientes se suscriben por
// nombre vía EventSource, así que forman parte del contrato de la API.
const (
	EventInit       = "init"       // lista completa de artículos, solo al conectar
	EventUsers      = "users"      // lista completa de presencia, a todos
	EventNewItem    = "newItem"    // artículo creado
	EventUpdateItem = "updateItem" // artículo tras use/restock
	EventDeleteItem = "deleteItem" // id del artículo eliminado
)

// DeleteItemEvent payload del evento deleteItem.
type DeleteItemEvent struct {
	ID int `json:"id"`
}
