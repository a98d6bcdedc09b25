package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"falta-uno-backend/models"
	"falta-uno-backend/services"
	"falta-uno-backend/store"
)

// ReminderWorker emits a recordatorio notification to every confirmed
// participant when their partido gets close. Each partido is reminded once;
// the recordatorio_enviado flag keeps restarts from double-notifying.
type ReminderWorker struct {
	Store  store.Store
	Notifs *services.NotificationService
	// Antelacion is how far ahead of match time the reminder goes out.
	Antelacion time.Duration
}

func NewReminderWorker(st store.Store, notifs *services.NotificationService, antelacion time.Duration) *ReminderWorker {
	if antelacion <= 0 {
		antelacion = 2 * time.Hour
	}
	return &ReminderWorker{Store: st, Notifs: notifs, Antelacion: antelacion}
}

// Run polls until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context, pollInterval time.Duration) {
	log.Println("[Recordatorios] worker iniciado")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Recordatorios] worker detenido")
			return
		case <-ticker.C:
			if err := w.tick(ctx); err != nil {
				log.Printf("[Recordatorios] error en ciclo: %v", err)
			}
		}
	}
}

func (w *ReminderWorker) tick(ctx context.Context) error {
	ahora := time.Now()
	proximos, err := w.Store.ListPartidosProximos(ctx, ahora, ahora.Add(w.Antelacion))
	if err != nil {
		return err
	}
	for _, p := range proximos {
		if err := w.recordar(ctx, p.ID); err != nil {
			log.Printf("[Recordatorios] error recordando partido %s: %v", p.ID, err)
		}
	}
	return nil
}

// recordar flags one partido and notifies its confirmed participants. The
// flag is set on a fresh row inside the partido's mutation scope; the listed
// copy is only a candidate and never written back, so a slot change
// committed in between is not clobbered.
func (w *ReminderWorker) recordar(ctx context.Context, partidoID string) error {
	var partido *models.Partido
	var confirmados []string
	err := w.Store.ConPartido(ctx, partidoID, func(tx store.Store) error {
		p, err := tx.GetPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		if p.RecordatorioEnviado || p.Estado.Terminal() {
			return nil
		}
		participaciones, err := tx.ListParticipacionesByPartido(ctx, partidoID)
		if err != nil {
			return err
		}
		for _, par := range participaciones {
			if par.Estado == models.ParticipacionConfirmado {
				confirmados = append(confirmados, par.UsuarioID)
			}
		}
		p.RecordatorioEnviado = true
		if err := tx.SavePartido(ctx, p); err != nil {
			return err
		}
		partido = p
		return nil
	})
	if err != nil || partido == nil {
		return err
	}
	for _, usuarioID := range confirmados {
		w.Notifs.Notificar(ctx, models.NotifRecordatorio, usuarioID, &partido.ID,
			"Se viene tu partido",
			fmt.Sprintf("%q arranca a las %s en %s.", partido.Titulo, partido.Fecha.Format("15:04"), partido.ClubNombre))
	}
	return nil
}
