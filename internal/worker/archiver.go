package worker

import (
	"context"
	"time"

	"tg_escrow/internal/domain/entity"
)

type DealExporter interface {
	Export() []entity.Deal
}

type SnapshotStore interface {
	Save(ctx context.Context, deals []entity.Deal) error
}

type DealArchive interface {
	Archive(ctx context.Context, deal entity.Deal) error
}

// Archiver периодически снапшотит реестр и выгружает закрытые сделки в архив.
type Archiver struct {
	exporter  DealExporter
	snapshots SnapshotStore
	archive   DealArchive
	interval  time.Duration
}

func NewArchiver(
	exporter DealExporter,
	snapshots SnapshotStore,
	archive DealArchive,
	interval time.Duration,
) *Archiver {
	return &Archiver{
		exporter:  exporter,
		snapshots: snapshots,
		archive:   archive,
		interval:  interval,
	}
}

func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	logger(ctx).Info("archiver started", "interval", a.interval.String())

	for {
		select {
		case <-ctx.Done():
			// Прощальный снапшот, чтобы рестарт стартовал с актуального.
			a.tick(context.WithoutCancel(ctx))

			logger(ctx).Info("archiver stopped")

			return ctx.Err()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Archiver) tick(ctx context.Context) {
	deals := a.exporter.Export()

	if err := a.snapshots.Save(ctx, deals); err != nil {
		logger(ctx).Error("snapshot failed", "error", err)
	}

	for _, deal := range deals {
		if !deal.Finished() {
			continue
		}

		// Archive идемпотентен по ID, повторный тик ничего не дублирует.
		if err := a.archive.Archive(ctx, deal); err != nil {
			logger(ctx).Error("archive failed", "deal_id", deal.ID, "error", err)
		}
	}
}
