package store

import (
	"context"
	"errors"
	"time"

	"falta-uno-backend/models"
)

// ErrNotFound is returned by every Get* when the row does not exist.
// Callers translate it into their own taxonomy.
var ErrNotFound = errors.New("registro no encontrado")

// ErrDuplicate is returned when a save would violate a uniqueness rule
// (one active participacion per user per partido, one rating per triple).
var ErrDuplicate = errors.New("registro duplicado")

// Store is the narrow persistence contract the domain services depend on.
// Mutations that touch a partido's slot count or a participacion's state
// must run inside ConPartido, which serializes all writers of that partido.
type Store interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error

	GetPartido(ctx context.Context, id string) (*models.Partido, error)
	SavePartido(ctx context.Context, p *models.Partido) error
	ListPartidosAbiertos(ctx context.Context) ([]models.Partido, error)
	// ListPartidosPorFinalizar returns abierto/completo partidos whose
	// scheduled time is at or before now.
	ListPartidosPorFinalizar(ctx context.Context, now time.Time) ([]models.Partido, error)
	// ListPartidosProximos returns abierto/completo partidos scheduled
	// inside [from, to] that have not had their reminder sent yet.
	ListPartidosProximos(ctx context.Context, from, to time.Time) ([]models.Partido, error)

	GetParticipacion(ctx context.Context, id string) (*models.Participacion, error)
	// GetParticipacionActiva returns the single non-cancelado row for
	// (partidoID, usuarioID), or ErrNotFound.
	GetParticipacionActiva(ctx context.Context, partidoID, usuarioID string) (*models.Participacion, error)
	ListParticipacionesByPartido(ctx context.Context, partidoID string) ([]models.Participacion, error)
	ListParticipacionesByUsuario(ctx context.Context, usuarioID string) ([]models.Participacion, error)
	SaveParticipacion(ctx context.Context, p *models.Participacion) error

	SaveRating(ctx context.Context, r *models.Rating) error
	GetRating(ctx context.Context, partidoID, evaluadorID, evaluadoID string) (*models.Rating, error)
	ListRatingsRecibidos(ctx context.Context, evaluadoID string) ([]models.Rating, error)

	SaveNotificacion(ctx context.Context, n *models.Notificacion) error
	ListNotificaciones(ctx context.Context, usuarioID string, soloNoLeidas bool) ([]models.Notificacion, error)
	ListNotificacionesDesde(ctx context.Context, usuarioID string, desde time.Time) ([]models.Notificacion, error)
	MarkNotificacionLeida(ctx context.Context, id, usuarioID string) error

	// ConPartido runs fn inside a mutation scope that holds exclusive
	// access to the given partido. Two concurrent calls for the same
	// partido never interleave; either all of fn's writes commit or none.
	ConPartido(ctx context.Context, partidoID string, fn func(Store) error) error
}
