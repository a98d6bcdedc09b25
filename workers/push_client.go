package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"falta-uno-backend/models"
)

// PushClient forwards notifications to the external push-delivery service,
// which owns device tokens and the actual provider (Expo/FCM/APNs).
type PushClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewPushClient(baseURL, token string) *PushClient {
	return &PushClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enviar posts one notification. Callers already treat delivery as
// best-effort; a non-2xx response is just an error to log.
func (c *PushClient) Enviar(ctx context.Context, n models.Notificacion) error {
	payload := struct {
		UsuarioID string  `json:"usuario_id"`
		Tipo      string  `json:"tipo"`
		PartidoID *string `json:"partido_id,omitempty"`
		Titulo    string  `json:"titulo"`
		Mensaje   string  `json:"mensaje"`
	}{
		UsuarioID: n.UsuarioID,
		Tipo:      string(n.Tipo),
		PartidoID: n.PartidoID,
		Titulo:    n.Titulo,
		Mensaje:   n.Mensaje,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/api/v1/push", c.BaseURL), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call push service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
