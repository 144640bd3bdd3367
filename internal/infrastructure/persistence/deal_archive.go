package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/pkg/errcodes"
)

// DealArchiveRepository хранит закрытые сделки в postgres.
// Реестр живёт в памяти; архив — точка выгрузки для разрешённых сделок.
type DealArchiveRepository struct {
	db *sqlx.DB
}

func NewDealArchiveRepository(db *sqlx.DB) *DealArchiveRepository {
	return &DealArchiveRepository{db: db}
}

// withTx выполняет функцию в транзакции.
func (r *DealArchiveRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Archive сохраняет закрытую сделку. Идемпотентно по ID: повторная
// архивация той же сделки — no-op.
func (r *DealArchiveRepository) Archive(ctx context.Context, deal entity.Deal) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		schema, err := fromDeal(deal, time.Now())
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal fields")
		}

		query := `
			INSERT INTO deals_archive (
				id, initiator, fields, state, seller_confirmed_by,
				buyer_confirmed_by, claimed_by, outcome, created_at, archived_at
			) VALUES (
				:id, :initiator, :fields, :state, :seller_confirmed_by,
				:buyer_confirmed_by, :claimed_by, :outcome, :created_at, :archived_at
			)
			ON CONFLICT (id) DO NOTHING`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to archive deal")
		}

		return nil
	})
}

// GetByID возвращает архивную запись.
func (r *DealArchiveRepository) GetByID(ctx context.Context, id string) (entity.Deal, error) {
	query := `
		SELECT id, initiator, fields, state, seller_confirmed_by,
		       buyer_confirmed_by, claimed_by, outcome, created_at, archived_at
		FROM deals_archive
		WHERE id = $1`

	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "archived deal not found")
		}

		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get archived deal")
	}

	deal, err := schema.toDomain()
	if err != nil {
		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to convert archived deal")
	}

	return deal, nil
}

// List — архив постранично, свежие выше.
func (r *DealArchiveRepository) List(ctx context.Context, limit, offset int) ([]entity.Deal, error) {
	query := `
		SELECT id, initiator, fields, state, seller_confirmed_by,
		       buyer_confirmed_by, claimed_by, outcome, created_at, archived_at
		FROM deals_archive
		ORDER BY archived_at DESC
		LIMIT $1 OFFSET $2`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list archived deals")
	}

	deals := make([]entity.Deal, 0, len(schemas))

	for i := range schemas {
		deal, err := schemas[i].toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert archived deal")
		}

		deals = append(deals, deal)
	}

	return deals, nil
}
