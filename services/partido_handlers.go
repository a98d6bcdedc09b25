package services

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// CreatePartidoHandler — POST /partidos
func (s *PartidoService) CreatePartidoHandler(c *fiber.Ctx) error {
	creadorID := c.Locals("user_id").(string)
	var form CrearPartidoForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "JSON invalido", "details": err.Error()})
	}
	partido, err := s.CreatePartido(c.Context(), creadorID, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(partido)
}

// ListPartidosHandler — GET /partidos (only abiertos, the browse screen)
func (s *PartidoService) ListPartidosHandler(c *fiber.Ctx) error {
	partidos, err := s.Store.ListPartidosAbiertos(c.Context())
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	return c.JSON(partidos)
}

// GetPartidoHandler — GET /partidos/:id, with its participations attached.
func (s *PartidoService) GetPartidoHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	partido, err := s.Store.GetPartido(c.Context(), id)
	if err != nil {
		return respondError(c, mapStoreErr(err, "partido"))
	}
	participaciones, err := s.Store.ListParticipacionesByPartido(c.Context(), id)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	partido.Participaciones = participaciones
	return c.JSON(partido)
}

// CancelPartidoHandler — POST /partidos/:id/cancelar
func (s *PartidoService) CancelPartidoHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	partido, err := s.CancelPartido(c.Context(), c.Params("id"), usuarioID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(partido)
}

// FinalizePartidoHandler — POST /partidos/:id/finalizar
func (s *PartidoService) FinalizePartidoHandler(c *fiber.Ctx) error {
	partido, err := s.FinalizePartido(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(partido)
}

// MarkNoShowHandler — POST /participaciones/:id/no-show
func (s *PartidoService) MarkNoShowHandler(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	par, err := s.MarkNoShow(c.Context(), c.Params("id"), usuarioID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(par)
}
