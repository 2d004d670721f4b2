package kardex

import "fmt"

// ItemKind discrimina a qué catálogo apunta una referencia de ítem.
type ItemKind string

// Tipos de ítem inventariables en el Kardex.
const (
	ItemMateriaPrima ItemKind = "MATERIA_PRIMA"
	ItemProducto     ItemKind = "PRODUCTO"
)

// ItemRef es una referencia polimórfica a una materia prima o a un producto
// terminado (reemplaza el par content_type/object_id genérico del esquema
// relacional por una unión etiquetada).
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// MateriaPrimaRef construye la referencia a una materia prima (ID formato MPnnnnnn).
func MateriaPrimaRef(id string) ItemRef {
	return ItemRef{Kind: ItemMateriaPrima, ID: id}
}

// ProductoRef construye la referencia a un producto terminado.
func ProductoRef(id string) ItemRef {
	return ItemRef{Kind: ItemProducto, ID: id}
}

// Valid indica si la referencia tiene tipo conocido e ID no vacío.
func (r ItemRef) Valid() bool {
	if r.ID == "" {
		return false
	}
	return r.Kind == ItemMateriaPrima || r.Kind == ItemProducto
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
