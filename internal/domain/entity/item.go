package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemKind distingue productos de recursos. Comparten reglas de conciliación pero nunca se fusionan.
type ItemKind string

const (
	ItemKindProduct  ItemKind = "product"
	ItemKindResource ItemKind = "resource"
)

// Valid indica si el tipo es uno de los conocidos.
func (k ItemKind) Valid() bool {
	return k == ItemKindProduct || k == ItemKindResource
}

// ItemRef referencia etiquetada a un producto o recurso del catálogo.
type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// NewItemRef valida el tipo y el UUID.
func NewItemRef(kind, id string) (ItemRef, error) {
	ref := ItemRef{Kind: ItemKind(kind), ID: id}
	if err := ref.Validate(); err != nil {
		return ItemRef{}, err
	}
	return ref, nil
}

// Validate comprueba tipo e identificador.
func (r ItemRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("tipo de ítem desconocido %q", r.Kind)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("id de ítem inválido: %w", err)
	}
	return nil
}

func (r ItemRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// StockKey es la clave natural del stock: (bodega, ítem).
type StockKey struct {
	WarehouseID string
	Item        ItemRef
}

// Validate comprueba la bodega y el ítem.
func (k StockKey) Validate() error {
	if _, err := uuid.Parse(k.WarehouseID); err != nil {
		return fmt.Errorf("id de bodega inválido: %w", err)
	}
	return k.Item.Validate()
}

// String es la forma canónica de la clave; se usa para locks y caché.
func (k StockKey) String() string {
	return k.WarehouseID + "/" + k.Item.String()
}
