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

// PartidoService owns the match lifecycle: creation, the abierto⇄completo
// toggle, cancellation, finalization and no-show flagging.
type PartidoService struct {
	Store  store.Store
	Notifs *NotificationService
	// Ahora is the clock; tests replace it.
	Ahora func() time.Time
}

func NewPartidoService(st store.Store, notifs *NotificationService) *PartidoService {
	return &PartidoService{Store: st, Notifs: notifs, Ahora: time.Now}
}

// CrearPartidoForm is the creation payload from the mobile client.
type CrearPartidoForm struct {
	Titulo          string   `json:"titulo"`
	Descripcion     *string  `json:"descripcion,omitempty"`
	Fecha           string   `json:"fecha"` // RFC3339
	ClubNombre      string   `json:"club_nombre"`
	ClubDireccion   string   `json:"club_direccion"`
	CategoriaMinima string   `json:"categoria_minima"`
	CategoriaMaxima string   `json:"categoria_maxima"`
	CuposTotales    int      `json:"cupos_totales"`
	CostoPorPersona *float64 `json:"costo_por_persona,omitempty"`
}

// CreatePartido validates the form and creates the partido in abierto with
// the creator auto-confirmed, which takes one slot from the start.
func (s *PartidoService) CreatePartido(ctx context.Context, creadorID string, form CrearPartidoForm) (*models.Partido, error) {
	if creadorID == "" || form.Titulo == "" || form.ClubNombre == "" {
		return nil, fmt.Errorf("%w: titulo y club_nombre son obligatorios", ErrValidation)
	}
	if form.CuposTotales < 2 {
		return nil, fmt.Errorf("%w: cupos_totales debe ser al menos 2", ErrValidation)
	}
	minima, err := models.ParseCategoria(form.CategoriaMinima)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	maxima, err := models.ParseCategoria(form.CategoriaMaxima)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !minima.MenorOIgual(maxima) {
		return nil, fmt.Errorf("%w: categoria_minima supera a categoria_maxima", ErrValidation)
	}
	fecha, err := time.Parse(time.RFC3339, form.Fecha)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha invalida (usar RFC3339)", ErrValidation)
	}
	if !fecha.After(s.Ahora()) {
		return nil, fmt.Errorf("%w: la fecha del partido ya paso", ErrSchedule)
	}
	if _, err := s.Store.GetProfile(ctx, creadorID); err != nil {
		return nil, mapStoreErr(err, "perfil del creador")
	}

	partido := &models.Partido{
		ID:               uuid.NewString(),
		CreadorID:        creadorID,
		Titulo:           form.Titulo,
		Descripcion:      form.Descripcion,
		Fecha:            fecha,
		ClubNombre:       form.ClubNombre,
		ClubDireccion:    form.ClubDireccion,
		CategoriaMinima:  minima,
		CategoriaMaxima:  maxima,
		CuposTotales:     form.CuposTotales,
		CuposDisponibles: form.CuposTotales - 1,
		CostoPorPersona:  form.CostoPorPersona,
		Estado:           models.PartidoAbierto,
	}
	creador := &models.Participacion{
		ID:        uuid.NewString(),
		PartidoID: partido.ID,
		UsuarioID: creadorID,
		Estado:    models.ParticipacionConfirmado,
		EsCreador: true,
	}
	err = s.Store.ConPartido(ctx, partido.ID, func(tx store.Store) error {
		if err := tx.SavePartido(ctx, partido); err != nil {
			return err
		}
		return tx.SaveParticipacion(ctx, creador)
	})
	if err != nil {
		return nil, mapStoreErr(err, "crear partido")
	}
	return partido, nil
}

// RecomputeEstado re-derives abierto/completo from the slot count. It is
// idempotent and a no-op on terminal states, so redundant calls are safe.
func (s *PartidoService) RecomputeEstado(ctx context.Context, partidoID string) error {
	err := s.Store.ConPartido(ctx, partidoID, func(tx store.Store) error {
		p, err := tx.GetPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		if !recomputarEstado(p) {
			return nil
		}
		return tx.SavePartido(ctx, p)
	})
	if err != nil {
		return mapStoreErr(err, "recomputar estado")
	}
	return nil
}

// recomputarEstado applies the abierto⇄completo toggle in place and reports
// whether the partido changed. Terminal states never move.
func recomputarEstado(p *models.Partido) bool {
	if p.Estado.Terminal() {
		return false
	}
	deseado := models.PartidoAbierto
	if p.CuposDisponibles == 0 {
		deseado = models.PartidoCompleto
	}
	if p.Estado == deseado {
		return false
	}
	p.Estado = deseado
	return true
}

// CancelPartido moves the partido to cancelado and cascades the cancellation
// over every pendiente/confirmado participation, without penalties.
func (s *PartidoService) CancelPartido(ctx context.Context, partidoID, byUserID string) (*models.Partido, error) {
	var partido *models.Partido
	var pendientes []notifPendiente
	err := s.Store.ConPartido(ctx, partidoID, func(tx store.Store) error {
		p, err := tx.GetPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		if p.CreadorID != byUserID {
			return fmt.Errorf("%w: solo el creador puede cancelar el partido", ErrPermission)
		}
		if p.Estado.Terminal() {
			return fmt.Errorf("%w: el partido ya esta %s", ErrInvalidState, p.Estado)
		}
		participaciones, err := tx.ListParticipacionesByPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		ahora := s.Ahora()
		for i := range participaciones {
			par := &participaciones[i]
			if par.Estado != models.ParticipacionPendiente && par.Estado != models.ParticipacionConfirmado {
				continue
			}
			par.Estado = models.ParticipacionCancelado
			par.CanceladoAt = &ahora
			if err := tx.SaveParticipacion(ctx, par); err != nil {
				return err
			}
			if par.UsuarioID != byUserID {
				pendientes = append(pendientes, notifPendiente{
					Tipo:      models.NotifCancelacion,
					UsuarioID: par.UsuarioID,
					PartidoID: &p.ID,
					Titulo:    "Partido cancelado",
					Mensaje:   fmt.Sprintf("El partido %q del %s fue cancelado por el organizador.", p.Titulo, p.Fecha.Format("02/01 15:04")),
				})
			}
		}
		p.Estado = models.PartidoCancelado
		p.CuposDisponibles = p.CuposTotales
		if err := tx.SavePartido(ctx, p); err != nil {
			return err
		}
		partido = p
		return nil
	})
	if err != nil {
		return nil, envolver(err, "cancelar partido")
	}
	s.Notifs.EmitAll(ctx, pendientes)
	return partido, nil
}

// FinalizePartido closes a partido whose scheduled time has elapsed.
// Also invoked by the scheduler for partidos left behind.
func (s *PartidoService) FinalizePartido(ctx context.Context, partidoID string) (*models.Partido, error) {
	var partido *models.Partido
	err := s.Store.ConPartido(ctx, partidoID, func(tx store.Store) error {
		p, err := tx.GetPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		if p.Estado.Terminal() {
			return fmt.Errorf("%w: el partido ya esta %s", ErrInvalidState, p.Estado)
		}
		if s.Ahora().Before(p.Fecha) {
			return fmt.Errorf("%w: el partido aun no se jugo", ErrSchedule)
		}
		p.Estado = models.PartidoFinalizado
		if err := tx.SavePartido(ctx, p); err != nil {
			return err
		}
		partido = p
		return nil
	})
	if err != nil {
		return nil, envolver(err, "finalizar partido")
	}
	return partido, nil
}

// MarkNoShow flags a confirmed participant of a finalized partido as absent,
// incrementing the profile's no_shows. Only the creator can flag one.
func (s *PartidoService) MarkNoShow(ctx context.Context, participacionID, byUserID string) (*models.Participacion, error) {
	par, err := s.Store.GetParticipacion(ctx, participacionID)
	if err != nil {
		return nil, mapStoreErr(err, "participacion")
	}
	var out *models.Participacion
	err = s.Store.ConPartido(ctx, par.PartidoID, func(tx store.Store) error {
		par, err := tx.GetParticipacion(ctx, participacionID)
		if err != nil {
			return err
		}
		p, err := tx.GetPartido(ctx, par.PartidoID)
		if err != nil {
			return err
		}
		if p.CreadorID != byUserID {
			return fmt.Errorf("%w: solo el creador puede marcar ausencias", ErrPermission)
		}
		if p.Estado != models.PartidoFinalizado {
			return fmt.Errorf("%w: el partido no esta finalizado", ErrInvalidState)
		}
		if par.Estado != models.ParticipacionConfirmado {
			return fmt.Errorf("%w: la participacion no estaba confirmada", ErrInvalidState)
		}
		if par.PenalizacionAplicada {
			return fmt.Errorf("%w: la ausencia ya fue registrada", ErrConflict)
		}
		perfil, err := tx.GetProfile(ctx, par.UsuarioID)
		if err != nil {
			return err
		}
		par.PenalizacionAplicada = true
		if err := tx.SaveParticipacion(ctx, par); err != nil {
			return err
		}
		perfil.NoShows++
		if err := tx.SaveProfile(ctx, perfil); err != nil {
			return err
		}
		out = par
		return nil
	})
	if err != nil {
		return nil, envolver(err, "marcar no-show")
	}
	return out, nil
}

// envolver keeps domain kinds intact and maps anything else through the
// storage taxonomy.
func envolver(err error, contexto string) error {
	for _, kind := range []error{ErrValidation, ErrEligibility, ErrInvalidState,
		ErrConflict, ErrNoSlots, ErrPermission, ErrSchedule, ErrNotFound} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return mapStoreErr(err, contexto)
}
