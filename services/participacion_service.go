package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"falta-uno-backend/models"
	"falta-uno-backend/store"

	"github.com/google/uuid"
)

// VentanaPenalizacionDefault is the short-notice cancellation window: a
// confirmed player bailing closer to match time than this gets flagged.
const VentanaPenalizacionDefault = 24 * time.Hour

// ParticipacionService owns the per-user join-request state machine.
type ParticipacionService struct {
	Store  store.Store
	Notifs *NotificationService
	// VentanaPenalizacion is configurable via CANCEL_PENALTY_WINDOW_HOURS.
	VentanaPenalizacion time.Duration
	Ahora               func() time.Time
}

func NewParticipacionService(st store.Store, notifs *NotificationService, ventana time.Duration) *ParticipacionService {
	if ventana <= 0 {
		ventana = VentanaPenalizacionDefault
	}
	return &ParticipacionService{
		Store:               st,
		Notifs:              notifs,
		VentanaPenalizacion: ventana,
		Ahora:               time.Now,
	}
}

// SolicitarUnirse creates a pendiente participation for the user, provided
// the partido is abierto, the user's category fits the range, and no active
// participation already exists. A user whose previous row is cancelado may
// request again with a fresh row while the partido stays abierto.
func (s *ParticipacionService) SolicitarUnirse(ctx context.Context, partidoID, usuarioID string) (*models.Participacion, error) {
	perfil, err := s.Store.GetProfile(ctx, usuarioID)
	if err != nil {
		return nil, mapStoreErr(err, "perfil del solicitante")
	}

	var creada *models.Participacion
	var pendientes []notifPendiente
	err = s.Store.ConPartido(ctx, partidoID, func(tx store.Store) error {
		p, err := tx.GetPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		if p.Estado != models.PartidoAbierto {
			return fmt.Errorf("%w: el partido esta %s", ErrInvalidState, p.Estado)
		}
		if !perfil.Categoria.Dentro(p.CategoriaMinima, p.CategoriaMaxima) {
			return fmt.Errorf("%w: categoria %s fuera del rango %s-%s",
				ErrEligibility, perfil.Categoria, p.CategoriaMinima, p.CategoriaMaxima)
		}
		if _, err := tx.GetParticipacionActiva(ctx, partidoID, usuarioID); err == nil {
			return fmt.Errorf("%w: ya existe una solicitud para este partido", ErrConflict)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		par := &models.Participacion{
			ID:        uuid.NewString(),
			PartidoID: partidoID,
			UsuarioID: usuarioID,
			Estado:    models.ParticipacionPendiente,
		}
		if err := tx.SaveParticipacion(ctx, par); err != nil {
			return err
		}
		creada = par
		pendientes = append(pendientes, notifPendiente{
			Tipo:      models.NotifNuevaSolicitud,
			UsuarioID: p.CreadorID,
			PartidoID: &p.ID,
			Titulo:    "Nueva solicitud",
			Mensaje:   fmt.Sprintf("%s quiere sumarse a %q.", perfil.FullName, p.Titulo),
		})
		return nil
	})
	if err != nil {
		return nil, envolver(err, "solicitar unirse")
	}
	s.Notifs.EmitAll(ctx, pendientes)
	return creada, nil
}

// ResponderSolicitud is the creator's accept/reject decision. The accept
// path is the single point of slot contention: it re-checks the free slot
// count inside the per-partido scope, so of two racing accepts for the last
// slot exactly one wins and the other gets ErrNoSlots.
func (s *ParticipacionService) ResponderSolicitud(ctx context.Context, participacionID, byUserID string, aceptar bool) (*models.Participacion, error) {
	ref, err := s.Store.GetParticipacion(ctx, participacionID)
	if err != nil {
		return nil, mapStoreErr(err, "participacion")
	}

	var out *models.Participacion
	var pendientes []notifPendiente
	err = s.Store.ConPartido(ctx, ref.PartidoID, func(tx store.Store) error {
		par, err := tx.GetParticipacion(ctx, participacionID)
		if err != nil {
			return err
		}
		p, err := tx.GetPartido(ctx, par.PartidoID)
		if err != nil {
			return err
		}
		if p.CreadorID != byUserID {
			return fmt.Errorf("%w: solo el creador responde solicitudes", ErrPermission)
		}
		if p.Estado.Terminal() {
			return fmt.Errorf("%w: el partido esta %s", ErrInvalidState, p.Estado)
		}
		if par.Estado != models.ParticipacionPendiente {
			return fmt.Errorf("%w: la solicitud ya fue %s", ErrInvalidState, par.Estado)
		}

		if !aceptar {
			par.Estado = models.ParticipacionRechazado
			if err := tx.SaveParticipacion(ctx, par); err != nil {
				return err
			}
			out = par
			pendientes = append(pendientes, notifPendiente{
				Tipo:      models.NotifSolicitudRechazada,
				UsuarioID: par.UsuarioID,
				PartidoID: &p.ID,
				Titulo:    "Solicitud rechazada",
				Mensaje:   fmt.Sprintf("Tu solicitud para %q fue rechazada.", p.Titulo),
			})
			return nil
		}

		if p.CuposDisponibles == 0 {
			return fmt.Errorf("%w: otro jugador ocupo el ultimo cupo", ErrNoSlots)
		}
		par.Estado = models.ParticipacionConfirmado
		p.CuposDisponibles--
		recomputarEstado(p)
		if err := tx.SaveParticipacion(ctx, par); err != nil {
			return err
		}
		if err := tx.SavePartido(ctx, p); err != nil {
			return err
		}
		out = par
		pendientes = append(pendientes, notifPendiente{
			Tipo:      models.NotifSolicitudAceptada,
			UsuarioID: par.UsuarioID,
			PartidoID: &p.ID,
			Titulo:    "¡Estas adentro!",
			Mensaje:   fmt.Sprintf("Te aceptaron en %q del %s.", p.Titulo, p.Fecha.Format("02/01 15:04")),
		})
		if p.Estado == models.PartidoCompleto {
			confirmados, err := tx.ListParticipacionesByPartido(ctx, p.ID)
			if err != nil {
				return err
			}
			for _, c := range confirmados {
				if c.Estado != models.ParticipacionConfirmado {
					continue
				}
				pendientes = append(pendientes, notifPendiente{
					Tipo:      models.NotifPartidoCompleto,
					UsuarioID: c.UsuarioID,
					PartidoID: &p.ID,
					Titulo:    "Partido completo",
					Mensaje:   fmt.Sprintf("%q ya tiene todos los cupos ocupados.", p.Titulo),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, envolver(err, "responder solicitud")
	}
	s.Notifs.EmitAll(ctx, pendientes)
	return out, nil
}

// CancelarParticipacion is the owner backing out of a partido. A confirmed
// cancellation frees the slot (which may flip completo back to abierto) and,
// inside the short-notice window, flags the participation for penalty.
// The creator cannot use this path; they cancel the whole partido.
func (s *ParticipacionService) CancelarParticipacion(ctx context.Context, participacionID, byUserID string) (*models.Participacion, error) {
	ref, err := s.Store.GetParticipacion(ctx, participacionID)
	if err != nil {
		return nil, mapStoreErr(err, "participacion")
	}

	var out *models.Participacion
	var pendientes []notifPendiente
	err = s.Store.ConPartido(ctx, ref.PartidoID, func(tx store.Store) error {
		par, err := tx.GetParticipacion(ctx, participacionID)
		if err != nil {
			return err
		}
		if par.UsuarioID != byUserID {
			return fmt.Errorf("%w: la participacion pertenece a otro usuario", ErrPermission)
		}
		if par.EsCreador {
			return fmt.Errorf("%w: el creador debe cancelar el partido completo", ErrPermission)
		}
		p, err := tx.GetPartido(ctx, par.PartidoID)
		if err != nil {
			return err
		}
		if p.Estado.Terminal() {
			return fmt.Errorf("%w: el partido esta %s", ErrInvalidState, p.Estado)
		}
		if par.Estado != models.ParticipacionPendiente && par.Estado != models.ParticipacionConfirmado {
			return fmt.Errorf("%w: la participacion esta %s", ErrInvalidState, par.Estado)
		}

		ahora := s.Ahora()
		eraConfirmado := par.Estado == models.ParticipacionConfirmado
		par.Estado = models.ParticipacionCancelado
		par.CanceladoAt = &ahora
		if eraConfirmado && p.Fecha.Sub(ahora) < s.VentanaPenalizacion {
			par.PenalizacionAplicada = true
		}
		if err := tx.SaveParticipacion(ctx, par); err != nil {
			return err
		}
		if eraConfirmado {
			p.CuposDisponibles++
			recomputarEstado(p)
			if err := tx.SavePartido(ctx, p); err != nil {
				return err
			}
			pendientes = append(pendientes, notifPendiente{
				Tipo:      models.NotifCancelacion,
				UsuarioID: p.CreadorID,
				PartidoID: &p.ID,
				Titulo:    "Baja en tu partido",
				Mensaje:   fmt.Sprintf("Un jugador se bajo de %q; se libero un cupo.", p.Titulo),
			})
		}
		out = par
		return nil
	})
	if err != nil {
		return nil, envolver(err, "cancelar participacion")
	}
	s.Notifs.EmitAll(ctx, pendientes)
	return out, nil
}
