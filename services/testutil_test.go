package services

import (
	"context"
	"testing"
	"time"

	"falta-uno-backend/models"
	"falta-uno-backend/store"
)

// entorno bundles the services over a shared in-memory store with a fixed
// clock, so schedule-dependent behavior is deterministic.
type entorno struct {
	Store           *store.MemStore
	Partidos        *PartidoService
	Participaciones *ParticipacionService
	Ratings         *RatingService
	Notifs          *NotificationService
	Reloj           time.Time
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	st := store.NewMemStore()
	notifs := NewNotificationService(st, NewLogDelivery())
	e := &entorno{
		Store:           st,
		Notifs:          notifs,
		Partidos:        NewPartidoService(st, notifs),
		Participaciones: NewParticipacionService(st, notifs, 24*time.Hour),
		Ratings:         NewRatingService(st),
		Reloj:           time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	reloj := func() time.Time { return e.Reloj }
	e.Partidos.Ahora = reloj
	e.Participaciones.Ahora = reloj
	return e
}

// avanzar moves the shared clock forward.
func (e *entorno) avanzar(d time.Duration) {
	e.Reloj = e.Reloj.Add(d)
}

func (e *entorno) crearPerfil(t *testing.T, id string, categoria models.CategoriaPadel) {
	t.Helper()
	err := e.Store.SaveProfile(context.Background(), &models.Profile{
		ID:        id,
		FullName:  "Jugador " + id,
		Categoria: categoria,
	})
	if err != nil {
		t.Fatalf("crear perfil %s: %v", id, err)
	}
}

// crearPartido creates a quinta-to-tercera partido 48h out with the given
// slot count, creator included.
func (e *entorno) crearPartido(t *testing.T, creadorID string, cupos int) *models.Partido {
	t.Helper()
	p, err := e.Partidos.CreatePartido(context.Background(), creadorID, CrearPartidoForm{
		Titulo:          "Partido de prueba",
		Fecha:           e.Reloj.Add(48 * time.Hour).Format(time.RFC3339),
		ClubNombre:      "Club Central",
		ClubDireccion:   "Av. Libertador 1234",
		CategoriaMinima: "quinta",
		CategoriaMaxima: "tercera",
		CuposTotales:    cupos,
	})
	if err != nil {
		t.Fatalf("crear partido: %v", err)
	}
	return p
}

// verificarCupos asserts the slot invariant: cupos_disponibles equals
// cupos_totales minus confirmed participations.
func (e *entorno) verificarCupos(t *testing.T, partidoID string) {
	t.Helper()
	ctx := context.Background()
	p, err := e.Store.GetPartido(ctx, partidoID)
	if err != nil {
		t.Fatalf("verificar cupos: %v", err)
	}
	if p.Estado == models.PartidoCancelado {
		return
	}
	participaciones, err := e.Store.ListParticipacionesByPartido(ctx, partidoID)
	if err != nil {
		t.Fatalf("verificar cupos: %v", err)
	}
	confirmados := 0
	for _, par := range participaciones {
		if par.Estado == models.ParticipacionConfirmado {
			confirmados++
		}
	}
	if p.CuposDisponibles != p.CuposTotales-confirmados {
		t.Fatalf("invariante de cupos rota: disponibles=%d totales=%d confirmados=%d",
			p.CuposDisponibles, p.CuposTotales, confirmados)
	}
}

// solicitudAceptada walks a user through request+accept.
func (e *entorno) solicitudAceptada(t *testing.T, partidoID, usuarioID, creadorID string) *models.Participacion {
	t.Helper()
	ctx := context.Background()
	par, err := e.Participaciones.SolicitarUnirse(ctx, partidoID, usuarioID)
	if err != nil {
		t.Fatalf("solicitar unirse %s: %v", usuarioID, err)
	}
	par, err = e.Participaciones.ResponderSolicitud(ctx, par.ID, creadorID, true)
	if err != nil {
		t.Fatalf("aceptar solicitud de %s: %v", usuarioID, err)
	}
	return par
}

func (e *entorno) notificacionesDe(t *testing.T, usuarioID string) []models.Notificacion {
	t.Helper()
	out, err := e.Store.ListNotificaciones(context.Background(), usuarioID, false)
	if err != nil {
		t.Fatalf("listar notificaciones de %s: %v", usuarioID, err)
	}
	return out
}
