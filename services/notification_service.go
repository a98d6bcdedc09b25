package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"falta-uno-backend/models"
	"falta-uno-backend/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Delivery hands a created notification to the external push collaborator.
// It is best-effort: failures are logged, never retried, and never block
// the operation that triggered the notification.
type Delivery interface {
	Enviar(ctx context.Context, n models.Notificacion) error
}

// logDelivery is the dev fallback when no push service is configured.
type logDelivery struct{}

func NewLogDelivery() Delivery { return logDelivery{} }

func (logDelivery) Enviar(_ context.Context, n models.Notificacion) error {
	log.Printf("[Push] (stub) usuario=%s tipo=%s titulo=%q", n.UsuarioID, n.Tipo, n.Titulo)
	return nil
}

type NotificationService struct {
	Store    store.Store
	Delivery Delivery
}

func NewNotificationService(st store.Store, delivery Delivery) *NotificationService {
	return &NotificationService{Store: st, Delivery: delivery}
}

// notifPendiente is a notification decided inside a locked mutation scope
// and emitted only after the scope has committed.
type notifPendiente struct {
	Tipo      models.TipoNotificacion
	UsuarioID string
	PartidoID *string
	Titulo    string
	Mensaje   string
}

// Notificar is the exported entry point for collaborators outside the
// services package (e.g. the reminder worker).
func (s *NotificationService) Notificar(ctx context.Context, tipo models.TipoNotificacion, usuarioID string, partidoID *string, titulo, mensaje string) {
	s.Emit(ctx, notifPendiente{
		Tipo:      tipo,
		UsuarioID: usuarioID,
		PartidoID: partidoID,
		Titulo:    titulo,
		Mensaje:   mensaje,
	})
}

// Emit creates the notification row and hands it to the push collaborator
// in the background. Intentionally outside any transactional guarantee.
// Notifications silenced by the user's preferencias are dropped here.
func (s *NotificationService) Emit(ctx context.Context, p notifPendiente) {
	if !s.preferenciaActiva(ctx, p.UsuarioID, p.Tipo) {
		return
	}
	n := models.Notificacion{
		ID:        uuid.NewString(),
		UsuarioID: p.UsuarioID,
		Tipo:      p.Tipo,
		PartidoID: p.PartidoID,
		Titulo:    p.Titulo,
		Mensaje:   p.Mensaje,
		CreatedAt: time.Now(),
	}
	if err := s.Store.SaveNotificacion(ctx, &n); err != nil {
		log.Printf("[Notif] fallo al guardar notificacion para %s: %v", p.UsuarioID, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Delivery.Enviar(ctx, n); err != nil {
			log.Printf("[Push] entrega fallida para %s: %v", n.UsuarioID, err)
		}
	}()
}

// preferenciaActiva checks the user's notification switches. A missing
// profile or preference defaults to enabled; cancellations always go out.
func (s *NotificationService) preferenciaActiva(ctx context.Context, usuarioID string, tipo models.TipoNotificacion) bool {
	perfil, err := s.Store.GetProfile(ctx, usuarioID)
	if err != nil || len(perfil.Preferencias) == 0 {
		return true
	}
	var prefs models.PreferenciasNotif
	if err := json.Unmarshal(perfil.Preferencias, &prefs); err != nil {
		return true
	}
	switch tipo {
	case models.NotifNuevaSolicitud:
		return prefs.NuevasSolicitudes == nil || *prefs.NuevasSolicitudes
	case models.NotifSolicitudAceptada, models.NotifSolicitudRechazada:
		return prefs.SolicitudAceptada == nil || *prefs.SolicitudAceptada
	case models.NotifRecordatorio:
		return prefs.Recordatorios == nil || *prefs.Recordatorios
	default:
		return true
	}
}

// EmitAll dispatches the notifications collected during a locked mutation.
func (s *NotificationService) EmitAll(ctx context.Context, pendientes []notifPendiente) {
	for _, p := range pendientes {
		s.Emit(ctx, p)
	}
}

// --- HTTP handlers ---

// ListNotificaciones returns the caller's latest notifications.
// GET /usuarios/me/notificaciones?no_leidas=true
func (s *NotificationService) ListNotificaciones(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	soloNoLeidas := c.Query("no_leidas") == "true"
	out, err := s.Store.ListNotificaciones(c.Context(), usuarioID, soloNoLeidas)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	return c.JSON(out)
}

// MarkLeida marks one of the caller's notifications as read.
// PATCH /notificaciones/:id/leida
func (s *NotificationService) MarkLeida(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)
	id := c.Params("id")
	err := s.Store.MarkNotificacionLeida(c.Context(), id, usuarioID)
	if errors.Is(err, store.ErrNotFound) {
		return respondError(c, fmt.Errorf("%w: notificacion %s", ErrNotFound, id))
	}
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	return c.JSON(fiber.Map{"message": "notificacion leida"})
}
