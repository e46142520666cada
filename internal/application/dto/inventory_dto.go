package dto

// AddItemRequest body para POST /items.
type AddItemRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"minStock"`
	Notes    string `json:"notes"`
	AddedBy  string `json:"addedBy"`
}

// UseItemRequest body para POST /items/:id/use.
// Amount ausente o en cero se interpreta como 1.
type UseItemRequest struct {
	Amount int    `json:"amount"`
	UsedBy string `json:"usedBy"`
}

// RestockItemRequest body para POST /items/:id/restock.
// Amount ausente o en cero se interpreta como 1.
type RestockItemRequest struct {
	Amount int `json:"amount"`
}

// DeleteItemResponse respuesta de POST /items/:id/delete.
type DeleteItemResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse cuerpo de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
