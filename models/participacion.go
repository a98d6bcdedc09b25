package models

import (
	"fmt"
	"time"
)

// Participacion is one user's request to join a partido and its subsequent
// status. Rows are never deleted; terminal rows stay as history, so a user
// may hold at most one non-cancelado row per partido.
type Participacion struct {
	ID        string              `json:"id" gorm:"primaryKey"`
	PartidoID string              `json:"partido_id" gorm:"not null;index"`
	UsuarioID string              `json:"usuario_id" gorm:"not null;index"`
	Estado    EstadoParticipacion `json:"estado" gorm:"type:varchar(16);not null;default:'pendiente'"`
	EsCreador bool                `json:"es_creador" gorm:"default:false"`
	// RatingDado mirrors the score this participant gave when rating
	// co-players, kept for the match history screen.
	RatingDado           *int       `json:"rating_dado,omitempty"`
	Comentario           *string    `json:"comentario,omitempty"`
	CanceladoAt          *time.Time `json:"cancelado_at,omitempty"`
	PenalizacionAplicada bool       `json:"penalizacion_aplicada" gorm:"default:false"`
	CreatedAt            time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (p *Participacion) Validar() error {
	if p.ID == "" || p.PartidoID == "" || p.UsuarioID == "" {
		return fmt.Errorf("participacion incompleta")
	}
	if !p.Estado.Valida() {
		return fmt.Errorf("participacion %s: estado desconocido %q", p.ID, p.Estado)
	}
	return nil
}

// Activa reports whether the row still counts against the one-per-user rule.
func (p *Participacion) Activa() bool {
	return p.Estado != ParticipacionCancelado
}
