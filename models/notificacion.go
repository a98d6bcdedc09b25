package models

import (
	"fmt"
	"time"
)

// Notificacion is an append-only notification row. The dispatcher creates
// them; the only mutation afterwards is marking them read.
type Notificacion struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UsuarioID string           `json:"usuario_id" gorm:"not null;index"`
	Tipo      TipoNotificacion `json:"tipo" gorm:"type:varchar(32);not null"`
	PartidoID *string          `json:"partido_id,omitempty" gorm:"index"`
	Titulo    string           `json:"titulo" gorm:"not null"`
	Mensaje   string           `json:"mensaje"`
	Leida     bool             `json:"leida" gorm:"default:false;index"`
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

func (n *Notificacion) Validar() error {
	if n.ID == "" || n.UsuarioID == "" {
		return fmt.Errorf("notificacion incompleta")
	}
	if !n.Tipo.Valida() {
		return fmt.Errorf("notificacion %s: tipo desconocido %q", n.ID, n.Tipo)
	}
	return nil
}
