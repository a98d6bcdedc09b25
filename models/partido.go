package models

import (
	"fmt"
	"time"
)

// Partido is a scheduled match with a fixed slot count.
// CuposDisponibles always equals CuposTotales minus the number of
// confirmed participations, the creator's implicit slot included.
type Partido struct {
	ID               string         `json:"id" gorm:"primaryKey"`
	CreadorID        string         `json:"creador_id" gorm:"not null;index"`
	Titulo           string         `json:"titulo" gorm:"not null"`
	Descripcion      *string        `json:"descripcion,omitempty"`
	Fecha            time.Time      `json:"fecha" gorm:"not null;index"`
	ClubNombre       string         `json:"club_nombre" gorm:"not null"`
	ClubDireccion    string         `json:"club_direccion"`
	CategoriaMinima  CategoriaPadel `json:"categoria_minima" gorm:"type:varchar(16);not null"`
	CategoriaMaxima  CategoriaPadel `json:"categoria_maxima" gorm:"type:varchar(16);not null"`
	CuposTotales     int            `json:"cupos_totales" gorm:"not null"`
	CuposDisponibles int            `json:"cupos_disponibles" gorm:"not null"`
	CostoPorPersona  *float64       `json:"costo_por_persona,omitempty"`
	Estado           EstadoPartido  `json:"estado" gorm:"type:varchar(16);not null;index;default:'abierto'"`
	// RecordatorioEnviado keeps the reminder worker from notifying twice.
	RecordatorioEnviado bool      `json:"recordatorio_enviado" gorm:"default:false"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Calculated for responses, not stored.
	Participaciones []Participacion `json:"participaciones,omitempty" gorm:"-"`
}

func (p *Partido) Validar() error {
	if p.ID == "" || p.CreadorID == "" {
		return fmt.Errorf("partido sin id o creador")
	}
	if !p.Estado.Valida() {
		return fmt.Errorf("partido %s: estado desconocido %q", p.ID, p.Estado)
	}
	if !p.CategoriaMinima.Valida() || !p.CategoriaMaxima.Valida() {
		return fmt.Errorf("partido %s: categoria desconocida", p.ID)
	}
	if p.CuposTotales < 2 {
		return fmt.Errorf("partido %s: cupos_totales %d < 2", p.ID, p.CuposTotales)
	}
	if p.CuposDisponibles < 0 || p.CuposDisponibles > p.CuposTotales {
		return fmt.Errorf("partido %s: cupos_disponibles %d fuera de [0,%d]",
			p.ID, p.CuposDisponibles, p.CuposTotales)
	}
	return nil
}
