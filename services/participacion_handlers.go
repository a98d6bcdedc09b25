package services

import (
	"fmt"

	"falta-uno-backend/models"

	"github.com/gofiber/fiber/v2"
)

// SolicitarHandler — POST /partidos/:id/solicitudes
func (s *ParticipacionService) SolicitarHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	par, err := s.SolicitarUnirse(c.Context(), c.Params("id"), usuarioID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(par)
}

// ResponderHandler — POST /participaciones/:id/responder {"aceptar": bool}
func (s *ParticipacionService) ResponderHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	var req struct {
		Aceptar *bool `json:"aceptar"`
	}
	if err := c.BodyParser(&req); err != nil || req.Aceptar == nil {
		return c.Status(400).JSON(fiber.Map{"error": "se espera {\"aceptar\": true|false}"})
	}
	par, err := s.ResponderSolicitud(c.Context(), c.Params("id"), usuarioID, *req.Aceptar)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(par)
}

// CancelarHandler — POST /participaciones/:id/cancelar
func (s *ParticipacionService) CancelarHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	par, err := s.CancelarParticipacion(c.Context(), c.Params("id"), usuarioID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(par)
}

// MisPartidosHandler — GET /usuarios/me/partidos: the caller's participation
// history with each partido attached, for the "mis partidos" screen.
func (s *ParticipacionService) MisPartidosHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	participaciones, err := s.Store.ListParticipacionesByUsuario(c.Context(), usuarioID)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	type fila struct {
		Participacion models.Participacion `json:"participacion"`
		Partido       *models.Partido      `json:"partido,omitempty"`
	}
	out := make([]fila, 0, len(participaciones))
	for _, par := range participaciones {
		f := fila{Participacion: par}
		if p, err := s.Store.GetPartido(c.Context(), par.PartidoID); err == nil {
			f.Partido = p
		}
		out = append(out, f)
	}
	return c.JSON(out)
}
