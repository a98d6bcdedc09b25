package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Rating is one player's evaluation of a co-player after a finalized match.
// Immutable once created; at most one per (partido, evaluador, evaluado).
type Rating struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	PartidoID   string         `json:"partido_id" gorm:"not null;index;uniqueIndex:idx_rating_triple"`
	EvaluadorID string         `json:"evaluador_id" gorm:"not null;uniqueIndex:idx_rating_triple"`
	EvaluadoID  string         `json:"evaluado_id" gorm:"not null;index;uniqueIndex:idx_rating_triple"`
	Puntuacion  int            `json:"puntuacion" gorm:"not null"`
	Aspectos    datatypes.JSON `json:"aspectos,omitempty" gorm:"type:jsonb"`
	Comentario  *string        `json:"comentario,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// AspectosRating are the optional sub-scores inside the Aspectos column.
type AspectosRating struct {
	Puntualidad *int `json:"puntualidad,omitempty"`
	Nivel       *int `json:"nivel,omitempty"`
	Actitud     *int `json:"actitud,omitempty"`
}

func (r *Rating) Validar() error {
	if r.ID == "" || r.PartidoID == "" || r.EvaluadorID == "" || r.EvaluadoID == "" {
		return fmt.Errorf("rating incompleto")
	}
	if r.EvaluadorID == r.EvaluadoID {
		return fmt.Errorf("rating %s: evaluador y evaluado coinciden", r.ID)
	}
	if r.Puntuacion < 1 || r.Puntuacion > 5 {
		return fmt.Errorf("rating %s: puntuacion %d fuera de [1,5]", r.ID, r.Puntuacion)
	}
	return nil
}
