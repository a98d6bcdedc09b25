package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StreamNotificacionesSSE streams the caller's notifications as they are
// created, for the in-app feed. GET /usuarios/me/notificaciones/stream
func (s *NotificationService) StreamNotificacionesSSE(c *fiber.Ctx) error {
	usuarioID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		cursor := time.Now()

		// Initial keepalive so the client knows the stream is live.
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			nuevas, err := s.Store.ListNotificacionesDesde(ctx, usuarioID, cursor)
			cancel()
			if err != nil {
				log.Printf("[SSE] error consultando notificaciones de %s: %v", usuarioID, err)
				continue
			}
			if len(nuevas) == 0 {
				// Keepalive comment; also detects a gone client.
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
				continue
			}
			cursor = nuevas[len(nuevas)-1].CreatedAt
			for _, n := range nuevas {
				payload, _ := json.Marshal(n)
				fmt.Fprintf(w, "event: notificacion\ndata: %s\n\n", payload)
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})

	return nil
}
