package ingestion

import (
	"context"
	"time"

	"github.com/jhoicas/Leadius-api/pkg/logger"
)

// Worker repite la ingesta cada Interval hasta que se cancela el contexto.
type Worker struct {
	scanner  *Scanner
	interval time.Duration
	log      *logger.Logger
}

// NewWorker construye el worker; interval <= 0 usa 30 minutos.
func NewWorker(scanner *Scanner, interval time.Duration, log *logger.Logger) *Worker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Worker{scanner: scanner, interval: interval, log: log.Component("ingestion-worker")}
}

// Start bloquea: ejecuta una pasada inmediata y luego una por tick.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("worker de ingesta iniciado")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de ingesta detenido")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if _, err := w.scanner.Ingest(ctx, TriggerWorker); err != nil {
		w.log.Error().Err(err).Msg("ingesta periódica fallida")
	}
}
