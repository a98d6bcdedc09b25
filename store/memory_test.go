package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"falta-uno-backend/models"
)

func partidoDePrueba(id string) *models.Partido {
	return &models.Partido{
		ID:               id,
		CreadorID:        "creador",
		Titulo:           "Partido de prueba",
		Fecha:            time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC),
		ClubNombre:       "Club Central",
		CategoriaMinima:  models.CategoriaQuinta,
		CategoriaMaxima:  models.CategoriaTercera,
		CuposTotales:     4,
		CuposDisponibles: 3,
		Estado:           models.PartidoAbierto,
	}
}

func TestMemStoreNotFound(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	if _, err := st.GetPartido(ctx, "nada"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetPartido inexistente: esperaba ErrNotFound, fue %v", err)
	}
	if _, err := st.GetProfile(ctx, "nada"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile inexistente: esperaba ErrNotFound, fue %v", err)
	}
	if _, err := st.GetParticipacionActiva(ctx, "p", "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetParticipacionActiva inexistente: esperaba ErrNotFound, fue %v", err)
	}
}

func TestMemStoreParticipacionActivaUnica(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	if err := st.SavePartido(ctx, partidoDePrueba("p1")); err != nil {
		t.Fatalf("guardar partido: %v", err)
	}

	primera := &models.Participacion{
		ID: "par1", PartidoID: "p1", UsuarioID: "ana",
		Estado: models.ParticipacionPendiente,
	}
	if err := st.SaveParticipacion(ctx, primera); err != nil {
		t.Fatalf("primera participacion: %v", err)
	}

	segunda := &models.Participacion{
		ID: "par2", PartidoID: "p1", UsuarioID: "ana",
		Estado: models.ParticipacionPendiente,
	}
	if err := st.SaveParticipacion(ctx, segunda); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("segunda activa del mismo usuario: esperaba ErrDuplicate, fue %v", err)
	}

	// Cancelar la primera libera la unicidad.
	primera.Estado = models.ParticipacionCancelado
	if err := st.SaveParticipacion(ctx, primera); err != nil {
		t.Fatalf("cancelar primera: %v", err)
	}
	if err := st.SaveParticipacion(ctx, segunda); err != nil {
		t.Fatalf("nueva activa tras cancelar: %v", err)
	}
	activa, err := st.GetParticipacionActiva(ctx, "p1", "ana")
	if err != nil {
		t.Fatalf("activa: %v", err)
	}
	if activa.ID != "par2" {
		t.Fatalf("la activa debia ser par2, fue %s", activa.ID)
	}
}

func TestMemStoreRatingTripleUnico(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	r := &models.Rating{
		ID: "r1", PartidoID: "p1", EvaluadorID: "ana", EvaluadoID: "beto",
		Puntuacion: 4,
	}
	if err := st.SaveRating(ctx, r); err != nil {
		t.Fatalf("primer rating: %v", err)
	}
	dup := &models.Rating{
		ID: "r2", PartidoID: "p1", EvaluadorID: "ana", EvaluadoID: "beto",
		Puntuacion: 2,
	}
	if err := st.SaveRating(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("rating duplicado: esperaba ErrDuplicate, fue %v", err)
	}
	// El mismo par en otro partido si se permite.
	otro := &models.Rating{
		ID: "r3", PartidoID: "p2", EvaluadorID: "ana", EvaluadoID: "beto",
		Puntuacion: 5,
	}
	if err := st.SaveRating(ctx, otro); err != nil {
		t.Fatalf("mismo par en otro partido: %v", err)
	}

	recibidos, err := st.ListRatingsRecibidos(ctx, "beto")
	if err != nil {
		t.Fatalf("ratings recibidos por beto: %v", err)
	}
	if len(recibidos) != 2 {
		t.Fatalf("beto recibio 2 ratings, se listan %d", len(recibidos))
	}
	recibidos, err = st.ListRatingsRecibidos(ctx, "ana")
	if err != nil || len(recibidos) != 0 {
		t.Fatalf("ana no recibio ratings, se listan %d (err %v)", len(recibidos), err)
	}
}

func TestMemStoreConPartidoExcluye(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	if err := st.SavePartido(ctx, partidoDePrueba("p1")); err != nil {
		t.Fatalf("guardar partido: %v", err)
	}

	// Dos decrementos del mismo cupo bajo ConPartido no se pisan.
	const vueltas = 50
	p := partidoDePrueba("p1")
	p.CuposDisponibles = vueltas
	p.CuposTotales = vueltas + 1
	if err := st.SavePartido(ctx, p); err != nil {
		t.Fatalf("resetear cupos: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < vueltas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.ConPartido(ctx, "p1", func(tx Store) error {
				actual, err := tx.GetPartido(ctx, "p1")
				if err != nil {
					return err
				}
				actual.CuposDisponibles--
				return tx.SavePartido(ctx, actual)
			})
		}()
	}
	wg.Wait()

	final, err := st.GetPartido(ctx, "p1")
	if err != nil {
		t.Fatalf("leer partido: %v", err)
	}
	if final.CuposDisponibles != 0 {
		t.Fatalf("los decrementos se pisaron: quedaron %d cupos", final.CuposDisponibles)
	}
}

func TestMemStoreNotificacionLeida(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	n := &models.Notificacion{
		ID: "n1", UsuarioID: "ana", Tipo: models.NotifRecordatorio,
		Titulo: "Recordatorio", Mensaje: "Jugas en 2 horas",
	}
	if err := st.SaveNotificacion(ctx, n); err != nil {
		t.Fatalf("guardar notificacion: %v", err)
	}

	// Solo el dueño la marca.
	if err := st.MarkNotificacionLeida(ctx, "n1", "beto"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("marcar ajena: esperaba ErrNotFound, fue %v", err)
	}
	if err := st.MarkNotificacionLeida(ctx, "n1", "ana"); err != nil {
		t.Fatalf("marcar propia: %v", err)
	}

	noLeidas, err := st.ListNotificaciones(ctx, "ana", true)
	if err != nil {
		t.Fatalf("listar no leidas: %v", err)
	}
	if len(noLeidas) != 0 {
		t.Fatalf("no debia quedar ninguna sin leer, hay %d", len(noLeidas))
	}
}

func TestMemStoreCopiaValores(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	if err := st.SavePartido(ctx, partidoDePrueba("p1")); err != nil {
		t.Fatalf("guardar: %v", err)
	}

	leido, _ := st.GetPartido(ctx, "p1")
	leido.CuposDisponibles = 0

	otraVez, _ := st.GetPartido(ctx, "p1")
	if otraVez.CuposDisponibles != 3 {
		t.Fatal("mutar el valor devuelto no debe tocar el store")
	}
}
