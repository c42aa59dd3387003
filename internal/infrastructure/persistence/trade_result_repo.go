package persistence

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/logx"
	"trade_exchange/pkg/lox"
)

type TradeResultRepository struct {
	db *sqlx.DB
}

func NewTradeResultRepository(db *sqlx.DB) *TradeResultRepository {
	return &TradeResultRepository{db: db}
}

// SaveBatch сохраняет результаты одного прохода атомарно.
func (r *TradeResultRepository) SaveBatch(ctx context.Context, botName string, results []entity.TradeResult) error {
	if len(results) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO trade_results (bot_name, offer_id, counterparty_id, outcome, confirmed,
				items_to_give, items_to_receive, processed_at)
			VALUES (:bot_name, :offer_id, :counterparty_id, :outcome, :confirmed,
				:items_to_give, :items_to_receive, :processed_at)`

		for _, result := range results {
			schema, err := newTradeResultSchema(botName, result)
			if err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to map trade result")
			}

			if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to insert trade result")
			}
		}

		return nil
	})
}

// ListByBot возвращает последние результаты бота, новые первыми.
func (r *TradeResultRepository) ListByBot(ctx context.Context, botName string, limit, offset int) ([]entity.TradeResult, error) {
	if limit <= 0 || offset < 0 {
		return nil, domain.NewError(errcodes.InvalidPaging, "invalid paging")
	}

	query := `
		SELECT id, bot_name, offer_id, counterparty_id, outcome, confirmed,
			items_to_give, items_to_receive, processed_at
		FROM trade_results
		WHERE bot_name = $1
		ORDER BY processed_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	var schemas []tradeResultSchema
	if err := r.db.SelectContext(ctx, &schemas, query, botName, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list trade results")
	}

	results, err := lox.MapErr(schemas, tradeResultSchema.toDomain)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert trade result")
	}

	return results, nil
}

// OnBatchResultsReady пишет историю обменов как наблюдатель прохода.
func (r *TradeResultRepository) OnBatchResultsReady(ctx context.Context, botName string, results []entity.TradeResult) {
	if err := r.SaveBatch(ctx, botName, results); err != nil {
		logger(ctx).Error("failed to save trade results",
			slog.String(logx.FieldBot, botName),
			slog.Int("count", len(results)),
			logx.Error(err),
		)
	}
}
