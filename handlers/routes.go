package handlers

import (
	"falta-uno-backend/middleware"
	"falta-uno-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers the whole HTTP surface. Everything except the SSE
// stream requires the gateway's X-User-ID context.
func SetupRoutes(
	app *fiber.App,
	partidos *services.PartidoService,
	participaciones *services.ParticipacionService,
	ratings *services.RatingService,
	notifs *services.NotificationService,
) {
	// SSE uses query-string identity (EventSource cannot set headers).
	app.Get("/usuarios/me/notificaciones/stream", middleware.SSEUserMiddleware(), notifs.StreamNotificacionesSSE)

	secured := app.Group("/", middleware.UserContextMiddleware())

	// Partidos
	secured.Post("/partidos", partidos.CreatePartidoHandler)
	secured.Get("/partidos", partidos.ListPartidosHandler)
	secured.Get("/partidos/:id", partidos.GetPartidoHandler)
	secured.Post("/partidos/:id/cancelar", partidos.CancelPartidoHandler)
	secured.Post("/partidos/:id/finalizar", partidos.FinalizePartidoHandler)

	// Participaciones
	secured.Post("/partidos/:id/solicitudes", participaciones.SolicitarHandler)
	secured.Post("/participaciones/:id/responder", participaciones.ResponderHandler)
	secured.Post("/participaciones/:id/cancelar", participaciones.CancelarHandler)
	secured.Post("/participaciones/:id/no-show", partidos.MarkNoShowHandler)
	secured.Get("/usuarios/me/partidos", participaciones.MisPartidosHandler)

	// Ratings y reputacion
	secured.Post("/partidos/:id/ratings", ratings.SubmitRatingHandler)
	secured.Get("/usuarios/:id/perfil", ratings.GetPerfilHandler)

	// Notificaciones
	secured.Get("/usuarios/me/notificaciones", notifs.ListNotificaciones)
	secured.Patch("/notificaciones/:id/leida", notifs.MarkLeida)
}
