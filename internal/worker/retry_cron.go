package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues comprobantes stuck in
// estado='error' with a next_retry_at in the past, plus comprobantes left in
// 'pendiente' whose enqueue was lost (process crash between commit and
// enqueue). The comprobante worker does the actual PDF generation; this cron
// only feeds the queue.

import (
	"context"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
	// A pendiente older than this was never picked up by a worker.
	stalePendienteAge = 2 * time.Minute
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	Dispatcher      *Dispatcher
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-enqueues pending comprobante retries. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	fallidos, err := cfg.ComprobanteRepo.FindPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	huerfanos, err := cfg.ComprobanteRepo.FindStalePendientes(ctx, time.Now().Add(-stalePendienteAge), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query stale pendientes")
		return
	}

	comprobantes := append(fallidos, huerfanos...)
	if len(comprobantes) == 0 {
		return
	}

	log.Info().Int("count", len(comprobantes)).Msg("retry_cron: re-enqueueing comprobantes")

	for i := range comprobantes {
		comp := &comprobantes[i]
		payload := ComprobanteJobPayload{ComprobanteID: comp.ID.String()}
		if err := cfg.Dispatcher.EnqueueComprobante(ctx, payload); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: failed to enqueue retry")
			continue
		}
		// Push next_retry_at forward so the next tick doesn't double-enqueue
		// while the job is still in the queue. The Save also bumps updated_at,
		// which keeps a re-enqueued pendiente out of the stale sweep.
		next := time.Now().Add(computeRetryBackoff(comp.RetryCount + 1))
		comp.NextRetryAt = &next
		_ = cfg.ComprobanteRepo.Update(ctx, comp)
	}
}
