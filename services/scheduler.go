package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartFinalizacionScheduler finalizes every abierto/completo partido whose
// scheduled time already passed. FinalizePartido is schedule-gated and
// idempotent against terminal states, so overlapping runs are harmless.
func (s *PartidoService) StartFinalizacionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			pendientes, err := s.Store.ListPartidosPorFinalizar(ctx, s.Ahora())
			if err != nil {
				log.Printf("[Scheduler] error listando partidos por finalizar: %v", err)
				return
			}
			for _, p := range pendientes {
				if _, err := s.FinalizePartido(ctx, p.ID); err != nil {
					log.Printf("[Scheduler] no se pudo finalizar partido %s: %v", p.ID, err)
				} else {
					log.Printf("[Scheduler] partido finalizado: %s (%s)", p.Titulo, p.ID)
				}
			}
		}),
	)
}
