package services

import (
	"context"
	"encoding/json"
	"fmt"

	"falta-uno-backend/models"
	"falta-uno-backend/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RatingService collects post-match ratings and keeps the evaluated
// player's reputation aggregates in sync.
type RatingService struct {
	Store store.Store
}

func NewRatingService(st store.Store) *RatingService {
	return &RatingService{Store: st}
}

// SubmitRatingInput is the rating payload.
type SubmitRatingInput struct {
	EvaluadoID string                 `json:"evaluado_id"`
	Puntuacion int                    `json:"puntuacion"`
	Aspectos   *models.AspectosRating `json:"aspectos,omitempty"`
	Comentario *string                `json:"comentario,omitempty"`
}

// SubmitRating creates an immutable rating for a co-player of a finalized
// partido, then recomputes the evaluated player's reputation aggregates
// from the full rating history.
func (s *RatingService) SubmitRating(ctx context.Context, partidoID, evaluadorID string, in SubmitRatingInput) (*models.Rating, error) {
	if in.Puntuacion < 1 || in.Puntuacion > 5 {
		return nil, fmt.Errorf("%w: puntuacion debe estar entre 1 y 5", ErrValidation)
	}
	if in.Aspectos != nil {
		for nombre, v := range map[string]*int{
			"puntualidad": in.Aspectos.Puntualidad,
			"nivel":       in.Aspectos.Nivel,
			"actitud":     in.Aspectos.Actitud,
		} {
			if v != nil && (*v < 1 || *v > 5) {
				return nil, fmt.Errorf("%w: aspecto %s fuera de [1,5]", ErrValidation, nombre)
			}
		}
	}
	if evaluadorID == in.EvaluadoID {
		return nil, fmt.Errorf("%w: no podes calificarte a vos mismo", ErrEligibility)
	}

	partido, err := s.Store.GetPartido(ctx, partidoID)
	if err != nil {
		return nil, mapStoreErr(err, "partido")
	}
	if partido.Estado != models.PartidoFinalizado {
		return nil, fmt.Errorf("%w: solo se califica un partido finalizado", ErrInvalidState)
	}
	for _, usuarioID := range []string{evaluadorID, in.EvaluadoID} {
		par, err := s.Store.GetParticipacionActiva(ctx, partidoID, usuarioID)
		if err != nil || par.Estado != models.ParticipacionConfirmado {
			return nil, fmt.Errorf("%w: ambos deben haber jugado el partido", ErrEligibility)
		}
	}
	if _, err := s.Store.GetRating(ctx, partidoID, evaluadorID, in.EvaluadoID); err == nil {
		return nil, fmt.Errorf("%w: ya calificaste a este jugador por este partido", ErrConflict)
	}

	rating := &models.Rating{
		ID:          uuid.NewString(),
		PartidoID:   partidoID,
		EvaluadorID: evaluadorID,
		EvaluadoID:  in.EvaluadoID,
		Puntuacion:  in.Puntuacion,
		Comentario:  in.Comentario,
	}
	if in.Aspectos != nil {
		raw, err := json.Marshal(in.Aspectos)
		if err != nil {
			return nil, fmt.Errorf("%w: aspectos invalidos", ErrValidation)
		}
		rating.Aspectos = datatypes.JSON(raw)
	}
	// The unique index on the triple makes the check-then-insert atomic.
	if err := s.Store.SaveRating(ctx, rating); err != nil {
		return nil, mapStoreErr(err, "rating")
	}

	if err := s.recomputarReputacion(ctx, in.EvaluadoID); err != nil {
		return nil, err
	}
	s.reflejarEnParticipacion(ctx, partidoID, evaluadorID, in)
	return rating, nil
}

// recomputarReputacion recalculates both aggregates from the full rating
// history: rating_promedio as the exact mean, partidos_jugados as the count
// of distinct partidos with at least one rating received. Deriving both from
// history makes concurrent submissions converge on the same result; an
// increment-style counter double-counts when two first ratings race.
func (s *RatingService) recomputarReputacion(ctx context.Context, evaluadoID string) error {
	recibidos, err := s.Store.ListRatingsRecibidos(ctx, evaluadoID)
	if err != nil {
		return mapStoreErr(err, "ratings recibidos")
	}
	perfil, err := s.Store.GetProfile(ctx, evaluadoID)
	if err != nil {
		return mapStoreErr(err, "perfil del evaluado")
	}
	var suma float64
	partidos := map[string]bool{}
	for _, r := range recibidos {
		suma += float64(r.Puntuacion)
		partidos[r.PartidoID] = true
	}
	if len(recibidos) > 0 {
		perfil.RatingPromedio = suma / float64(len(recibidos))
	}
	perfil.PartidosJugados = len(partidos)
	if err := s.Store.SaveProfile(ctx, perfil); err != nil {
		return mapStoreErr(err, "guardar perfil")
	}
	return nil
}

// reflejarEnParticipacion copies the score onto the evaluator's own
// participation row for the match-history screen. Best effort.
func (s *RatingService) reflejarEnParticipacion(ctx context.Context, partidoID, evaluadorID string, in SubmitRatingInput) {
	par, err := s.Store.GetParticipacionActiva(ctx, partidoID, evaluadorID)
	if err != nil {
		return
	}
	puntuacion := in.Puntuacion
	par.RatingDado = &puntuacion
	if in.Comentario != nil {
		par.Comentario = in.Comentario
	}
	_ = s.Store.SaveParticipacion(ctx, par)
}

// --- HTTP handlers ---

// SubmitRatingHandler — POST /partidos/:id/ratings
func (s *RatingService) SubmitRatingHandler(c *fiber.Ctx) error {
	evaluadorID := c.Locals("user_id").(string)
	var in SubmitRatingInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "JSON invalido", "details": err.Error()})
	}
	if in.EvaluadoID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "evaluado_id es obligatorio"})
	}
	rating, err := s.SubmitRating(c.Context(), c.Params("id"), evaluadorID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(rating)
}

// GetPerfilHandler — GET /usuarios/:id/perfil: public reputation view.
func (s *RatingService) GetPerfilHandler(c *fiber.Ctx) error {
	perfil, err := s.Store.GetProfile(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, mapStoreErr(err, "perfil"))
	}
	return c.JSON(perfil)
}
