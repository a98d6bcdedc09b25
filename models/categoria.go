package models

import "fmt"

// CategoriaPadel is the 8-level skill scale used across the app.
// Octava is the lowest level, primera the highest.
type CategoriaPadel string

const (
	CategoriaOctava  CategoriaPadel = "octava"
	CategoriaSeptima CategoriaPadel = "septima"
	CategoriaSexta   CategoriaPadel = "sexta"
	CategoriaQuinta  CategoriaPadel = "quinta"
	CategoriaCuarta  CategoriaPadel = "cuarta"
	CategoriaTercera CategoriaPadel = "tercera"
	CategoriaSegunda CategoriaPadel = "segunda"
	CategoriaPrimera CategoriaPadel = "primera"
)

// categoriaNivel gives every category its position on the scale.
// Any two categories are comparable through it.
var categoriaNivel = map[CategoriaPadel]int{
	CategoriaOctava:  1,
	CategoriaSeptima: 2,
	CategoriaSexta:   3,
	CategoriaQuinta:  4,
	CategoriaCuarta:  5,
	CategoriaTercera: 6,
	CategoriaSegunda: 7,
	CategoriaPrimera: 8,
}

// ParseCategoria validates an incoming category string. Unknown values are
// rejected, never coerced.
func ParseCategoria(s string) (CategoriaPadel, error) {
	c := CategoriaPadel(s)
	if _, ok := categoriaNivel[c]; !ok {
		return "", fmt.Errorf("categoria desconocida: %q", s)
	}
	return c, nil
}

// Valida reports whether the category is one of the eight known levels.
func (c CategoriaPadel) Valida() bool {
	_, ok := categoriaNivel[c]
	return ok
}

// Nivel returns the category's position on the scale (octava=1 … primera=8).
func (c CategoriaPadel) Nivel() int {
	return categoriaNivel[c]
}

// MenorOIgual reports whether c is at or below other on the scale.
func (c CategoriaPadel) MenorOIgual(other CategoriaPadel) bool {
	return categoriaNivel[c] <= categoriaNivel[other]
}

// Dentro reports whether c falls inside the [minima, maxima] range.
func (c CategoriaPadel) Dentro(minima, maxima CategoriaPadel) bool {
	n := categoriaNivel[c]
	return categoriaNivel[minima] <= n && n <= categoriaNivel[maxima]
}
