package worker

// email_worker.go
// Processes email jobs from QueueEmail: PDF receipts to customers and
// operational alerts (oversell, low stock) to the admin address. All sends
// go through the SMTP circuit breaker inside the Mailer.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// AlertaJobPayload is the oversell notification enqueued after settlement.
type AlertaJobPayload struct {
	Tipo      string   `json:"tipo"`
	Orden     int      `json:"orden"`
	Productos []string `json:"productos"`
}

type EmailWorker struct {
	mailer     *infra.Mailer
	adminEmail string
}

func NewEmailWorker(mailer *infra.Mailer, adminEmail string) *EmailWorker {
	return &EmailWorker{mailer: mailer, adminEmail: adminEmail}
}

// Process sends either an operational alert or a receipt email, depending on
// the payload shape.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	// Alert payloads carry a "tipo" discriminator
	var alerta AlertaJobPayload
	if err := json.Unmarshal(raw, &alerta); err == nil && alerta.Tipo == "alerta_sobreventa" {
		w.processAlerta(alerta)
		return
	}

	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.SendComprobante(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: comprobante sent successfully")
}

func (w *EmailWorker) processAlerta(alerta AlertaJobPayload) {
	if w.adminEmail == "" {
		log.Warn().Msg("email_worker: no admin email configured, dropping alert")
		return
	}
	subject := fmt.Sprintf("Sobreventa en orden #%d", alerta.Orden)
	body := fmt.Sprintf(
		"La orden #%d dejó stock negativo en los siguientes productos:\n%s\n\nRevisar inventario.",
		alerta.Orden, strings.Join(alerta.Productos, "\n"))
	if err := w.mailer.SendAlerta(w.adminEmail, subject, body); err != nil {
		log.Error().Err(err).Int("orden", alerta.Orden).Msg("email_worker: failed to send oversell alert")
		return
	}
	log.Info().Int("orden", alerta.Orden).Msg("email_worker: oversell alert sent")
}
