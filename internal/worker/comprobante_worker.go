package worker

// comprobante_worker.go
// Processes receipt jobs from QueueComprobantes: renders the PDF for a
// settled order and optionally enqueues an email job with the attachment.
// Failures schedule a retry via next_retry_at; the retry cron picks them up.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/infra"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// MaxComprobanteRetries is the retry limit before a job lands in the DLQ.
const MaxComprobanteRetries = 3

// ComprobanteJobPayload is the job envelope sent to QueueComprobantes.
type ComprobanteJobPayload struct {
	ComprobanteID string  `json:"comprobante_id"`
	ClienteEmail  *string `json:"cliente_email,omitempty"`
}

type ComprobanteWorker struct {
	comprobanteRepo repository.ComprobanteRepository
	ordenRepo       repository.OrdenRepository
	dispatcher      *Dispatcher
	pdfStoragePath  string
}

func NewComprobanteWorker(
	comprobanteRepo repository.ComprobanteRepository,
	ordenRepo repository.OrdenRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
) *ComprobanteWorker {
	return &ComprobanteWorker{
		comprobanteRepo: comprobanteRepo,
		ordenRepo:       ordenRepo,
		dispatcher:      dispatcher,
		pdfStoragePath:  pdfStoragePath,
	}
}

// Process handles a single comprobante job:
//  1. Load the comprobante and its settled order
//  2. Render the PDF receipt
//  3. Mark the comprobante emitido (or schedule a retry on failure)
//  4. Optionally enqueue an email job with the attachment
func (w *ComprobanteWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("comprobante_worker: invalid payload")
		return
	}

	comp, err := w.comprobanteRepo.FindByID(ctx, payload.ComprobanteID)
	if err != nil || comp == nil {
		log.Error().Err(err).Str("comprobante_id", payload.ComprobanteID).
			Msg("comprobante_worker: comprobante not found")
		return
	}
	if comp.Estado == "emitido" {
		// Requeued duplicate — nothing to do
		return
	}

	orden, err := w.ordenRepo.FindByID(ctx, comp.OrdenID)
	if err != nil || orden == nil {
		log.Error().Err(err).Str("orden_id", comp.OrdenID.String()).
			Msg("comprobante_worker: orden not found")
		return
	}

	pdfPath, pdfErr := infra.GenerateComprobantePDF(orden, comp, w.pdfStoragePath)
	if pdfErr != nil {
		comp.RetryCount++
		errMsg := pdfErr.Error()
		comp.LastError = &errMsg
		comp.Estado = "error"
		if comp.RetryCount >= MaxComprobanteRetries {
			comp.NextRetryAt = nil
			data, _ := json.Marshal(payload)
			SendToDLQ(ctx, w.dispatcher.rdb, QueueComprobantes, "comprobante", data,
				fmt.Sprintf("max retries (%d) exceeded: %s", MaxComprobanteRetries, errMsg),
				comp.RetryCount)
		} else {
			next := time.Now().Add(computeRetryBackoff(comp.RetryCount))
			comp.NextRetryAt = &next
			log.Warn().Err(pdfErr).
				Str("comprobante_id", comp.ID.String()).
				Int("retry_count", comp.RetryCount).
				Time("next_retry_at", next).
				Msg("comprobante_worker: PDF generation failed, retry scheduled")
		}
		_ = w.comprobanteRepo.Update(ctx, comp)
		return
	}

	comp.Estado = "emitido"
	comp.PDFPath = &pdfPath
	comp.NextRetryAt = nil
	comp.LastError = nil
	if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
		log.Error().Err(err).Str("comprobante_id", comp.ID.String()).
			Msg("comprobante_worker: failed to update comprobante")
		return
	}
	log.Info().Str("pdf", pdfPath).Int("orden", comp.NumeroOrden).
		Msg("comprobante_worker: PDF generated")

	if payload.ClienteEmail != nil && *payload.ClienteEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.ClienteEmail,
			Subject: fmt.Sprintf("Comprobante de consumo — Orden #%d", comp.NumeroOrden),
			Body:    fmt.Sprintf("Adjunto encontrarás tu comprobante.\nTotal: S/%s", comp.MontoTotal.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.ClienteEmail).
				Msg("comprobante_worker: failed to enqueue email")
		}
	}
}

// computeRetryBackoff returns the delay before retry n: 1m, 2m, 4m …
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}
