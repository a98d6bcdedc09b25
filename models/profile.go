package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Profile mirrors the player profile owned by the account service. The core
// only mutates the reputation aggregates (rating_promedio, partidos_jugados,
// no_shows); everything else is written by account management.
type Profile struct {
	ID                 string          `json:"id" gorm:"primaryKey"`
	FullName           string          `json:"full_name" gorm:"not null"`
	AvatarURL          *string         `json:"avatar_url,omitempty"`
	Categoria          CategoriaPadel  `json:"categoria" gorm:"type:varchar(16);not null"`
	UbicacionPreferida *string         `json:"ubicacion_preferida,omitempty"`
	Bio                *string         `json:"bio,omitempty"`
	Telefono           *string         `json:"telefono,omitempty"`
	RatingPromedio     float64         `json:"rating_promedio" gorm:"default:0"`
	PartidosJugados    int             `json:"partidos_jugados" gorm:"default:0"`
	NoShows            int             `json:"no_shows" gorm:"default:0"`
	Preferencias       datatypes.JSON  `json:"preferencias" gorm:"type:jsonb"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// PreferenciasNotif are the per-user notification switches stored in the
// Preferencias jsonb column. A missing key means enabled.
type PreferenciasNotif struct {
	NuevasSolicitudes  *bool `json:"notif_nuevas_solicitudes,omitempty"`
	SolicitudAceptada  *bool `json:"notif_solicitud_aceptada,omitempty"`
	Recordatorios      *bool `json:"notif_recordatorios,omitempty"`
}

func (p *Profile) Validar() error {
	if p.ID == "" {
		return fmt.Errorf("profile sin id")
	}
	if !p.Categoria.Valida() {
		return fmt.Errorf("profile %s: categoria desconocida %q", p.ID, p.Categoria)
	}
	if p.RatingPromedio < 0 || p.RatingPromedio > 5 {
		return fmt.Errorf("profile %s: rating_promedio fuera de rango: %f", p.ID, p.RatingPromedio)
	}
	return nil
}
