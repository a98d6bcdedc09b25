package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"falta-uno-backend/models"
)

// partidoFinalizado spins up a partido with the given players confirmed and
// walks it past its date to finalizado.
func (e *entorno) partidoFinalizado(t *testing.T, creadorID string, jugadores ...string) *models.Partido {
	t.Helper()
	p := e.crearPartido(t, creadorID, len(jugadores)+2)
	for _, u := range jugadores {
		e.solicitudAceptada(t, p.ID, u, creadorID)
	}
	e.avanzar(49 * time.Hour)
	out, err := e.Partidos.FinalizePartido(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("finalizar partido: %v", err)
	}
	return out
}

func TestSubmitRating(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana")
	ctx := context.Background()

	cuatro := 4
	comentario := "Buena actitud"
	r, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", SubmitRatingInput{
		EvaluadoID: "ana",
		Puntuacion: 5,
		Aspectos:   &models.AspectosRating{Actitud: &cuatro},
		Comentario: &comentario,
	})
	if err != nil {
		t.Fatalf("submit rating: %v", err)
	}
	if r.Puntuacion != 5 {
		t.Fatalf("esperaba puntuacion 5, fue %d", r.Puntuacion)
	}

	perfil, _ := e.Store.GetProfile(ctx, "ana")
	if perfil.RatingPromedio != 5 {
		t.Fatalf("rating_promedio esperado 5, fue %f", perfil.RatingPromedio)
	}
	if perfil.PartidosJugados != 1 {
		t.Fatalf("partidos_jugados esperado 1, fue %d", perfil.PartidosJugados)
	}

	// El rating queda reflejado en la participacion del evaluador.
	par, err := e.Store.GetParticipacionActiva(ctx, p.ID, "creador")
	if err != nil {
		t.Fatalf("participacion del evaluador: %v", err)
	}
	if par.RatingDado == nil || *par.RatingDado != 5 {
		t.Fatalf("rating_dado no reflejado: %v", par.RatingDado)
	}
}

func TestSubmitRatingValidaciones(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana")
	ctx := context.Background()

	seis := 6
	casos := []struct {
		nombre string
		in     SubmitRatingInput
	}{
		{"puntuacion cero", SubmitRatingInput{EvaluadoID: "ana", Puntuacion: 0}},
		{"puntuacion seis", SubmitRatingInput{EvaluadoID: "ana", Puntuacion: 6}},
		{"aspecto fuera de rango", SubmitRatingInput{
			EvaluadoID: "ana", Puntuacion: 3,
			Aspectos: &models.AspectosRating{Nivel: &seis},
		}},
	}
	for _, c := range casos {
		if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", c.in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: esperaba ErrValidation, fue %v", c.nombre, err)
		}
	}
}

func TestSubmitRatingElegibilidad(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	e.crearPerfil(t, "espectador", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana")
	ctx := context.Background()

	// Autocalificacion.
	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "ana", SubmitRatingInput{
		EvaluadoID: "ana", Puntuacion: 5,
	}); !errors.Is(err, ErrEligibility) {
		t.Fatalf("autocalificacion: esperaba ErrEligibility, fue %v", err)
	}
	// El evaluador no jugo.
	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "espectador", SubmitRatingInput{
		EvaluadoID: "ana", Puntuacion: 5,
	}); !errors.Is(err, ErrEligibility) {
		t.Fatalf("evaluador ajeno: esperaba ErrEligibility, fue %v", err)
	}
	// El evaluado no jugo.
	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", SubmitRatingInput{
		EvaluadoID: "espectador", Puntuacion: 5,
	}); !errors.Is(err, ErrEligibility) {
		t.Fatalf("evaluado ajeno: esperaba ErrEligibility, fue %v", err)
	}
}

func TestSubmitRatingSoloFinalizado(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	p := e.crearPartido(t, "creador", 4)
	e.solicitudAceptada(t, p.ID, "ana", "creador")

	_, err := e.Ratings.SubmitRating(context.Background(), p.ID, "creador", SubmitRatingInput{
		EvaluadoID: "ana", Puntuacion: 5,
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("partido abierto: esperaba ErrInvalidState, fue %v", err)
	}
}

func TestSubmitRatingDuplicado(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana")
	ctx := context.Background()

	in := SubmitRatingInput{EvaluadoID: "ana", Puntuacion: 4}
	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", in); err != nil {
		t.Fatalf("primer rating: %v", err)
	}
	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", in); !errors.Is(err, ErrConflict) {
		t.Fatalf("rating duplicado: esperaba ErrConflict, fue %v", err)
	}
	// El duplicado no infla los agregados.
	perfil, _ := e.Store.GetProfile(ctx, "ana")
	if perfil.PartidosJugados != 1 {
		t.Fatalf("partidos_jugados esperado 1, fue %d", perfil.PartidosJugados)
	}
}

func TestRatingPromedioExacto(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	e.crearPerfil(t, "beto", models.CategoriaQuinta)
	e.crearPerfil(t, "carla", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana", "beto", "carla")
	ctx := context.Background()

	// Tres evaluadores distintos califican a ana: 5, 4, 2.
	notas := map[string]int{"creador": 5, "beto": 4, "carla": 2}
	for evaluador, nota := range notas {
		if _, err := e.Ratings.SubmitRating(ctx, p.ID, evaluador, SubmitRatingInput{
			EvaluadoID: "ana", Puntuacion: nota,
		}); err != nil {
			t.Fatalf("rating de %s: %v", evaluador, err)
		}
	}

	perfil, _ := e.Store.GetProfile(ctx, "ana")
	esperado := (5.0 + 4.0 + 2.0) / 3.0
	if math.Abs(perfil.RatingPromedio-esperado) > 1e-9 {
		t.Fatalf("promedio esperado %f, fue %f", esperado, perfil.RatingPromedio)
	}
	// Tres ratings del mismo partido cuentan un solo partido jugado.
	if perfil.PartidosJugados != 1 {
		t.Fatalf("partidos_jugados esperado 1, fue %d", perfil.PartidosJugados)
	}
}

func TestReputacionDerivadaDelHistorial(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	p := e.partidoFinalizado(t, "creador", "ana")
	ctx := context.Background()

	// Un contador desincronizado (p.ej. por dos primeras calificaciones
	// simultaneas) se corrige en el proximo recalculo.
	perfil, _ := e.Store.GetProfile(ctx, "ana")
	perfil.PartidosJugados = 7
	perfil.RatingPromedio = 1
	if err := e.Store.SaveProfile(ctx, perfil); err != nil {
		t.Fatalf("desincronizar perfil: %v", err)
	}

	if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", SubmitRatingInput{
		EvaluadoID: "ana", Puntuacion: 4,
	}); err != nil {
		t.Fatalf("submit rating: %v", err)
	}

	perfil, _ = e.Store.GetProfile(ctx, "ana")
	if perfil.PartidosJugados != 1 {
		t.Fatalf("partidos_jugados debe salir del historial: esperaba 1, fue %d", perfil.PartidosJugados)
	}
	if perfil.RatingPromedio != 4 {
		t.Fatalf("rating_promedio debe salir del historial: esperaba 4, fue %f", perfil.RatingPromedio)
	}
}

func TestPartidosJugadosPorPartido(t *testing.T) {
	e := nuevoEntorno(t)
	e.crearPerfil(t, "creador", models.CategoriaCuarta)
	e.crearPerfil(t, "ana", models.CategoriaQuinta)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p := e.partidoFinalizado(t, "creador", "ana")
		if _, err := e.Ratings.SubmitRating(ctx, p.ID, "creador", SubmitRatingInput{
			EvaluadoID: "ana", Puntuacion: 3,
		}); err != nil {
			t.Fatalf("rating partido %d: %v", i, err)
		}
	}

	perfil, _ := e.Store.GetProfile(ctx, "ana")
	if perfil.PartidosJugados != 2 {
		t.Fatalf("dos partidos calificados deben contar 2, fue %d", perfil.PartidosJugados)
	}
	if perfil.RatingPromedio != 3 {
		t.Fatalf("promedio esperado 3, fue %f", perfil.RatingPromedio)
	}
}
