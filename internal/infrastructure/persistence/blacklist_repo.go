package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/pkg/errcodes"
)

type BlacklistRepository struct {
	db *sqlx.DB
}

func NewBlacklistRepository(db *sqlx.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, botName string, steamID uint64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM trade_blacklist WHERE bot_name = $1 AND steam_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, botName, int64(steamID)); err != nil { //nolint:gosec
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to check blacklist")
	}

	return exists, nil
}

// Add добавляет контрагента; повторное добавление обновляет причину.
func (r *BlacklistRepository) Add(ctx context.Context, entry entity.BlacklistEntry) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO trade_blacklist (bot_name, steam_id, reason)
			VALUES ($1, $2, $3)
			ON CONFLICT (bot_name, steam_id) DO UPDATE SET reason = EXCLUDED.reason`

		if _, err := tx.ExecContext(ctx, query, entry.BotName, int64(entry.SteamID), entry.Reason); err != nil { //nolint:gosec
			return domain.WrapError(err, errcodes.InternalServerError, "failed to add blacklist entry")
		}

		return nil
	})
}

func (r *BlacklistRepository) Remove(ctx context.Context, botName string, steamID uint64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM trade_blacklist WHERE bot_name = $1 AND steam_id = $2`,
			botName, int64(steamID), //nolint:gosec
		)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to remove blacklist entry")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}

		if rows == 0 {
			return domain.NewError(errcodes.BlacklistEntryNotFound, "blacklist entry not found")
		}

		return nil
	})
}

func (r *BlacklistRepository) List(ctx context.Context, botName string) ([]entity.BlacklistEntry, error) {
	query := `
		SELECT bot_name, steam_id, reason, created_at
		FROM trade_blacklist
		WHERE bot_name = $1
		ORDER BY created_at`

	var schemas []blacklistSchema
	if err := r.db.SelectContext(ctx, &schemas, query, botName); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list blacklist")
	}

	entries := make([]entity.BlacklistEntry, 0, len(schemas))
	for _, s := range schemas {
		entries = append(entries, s.toDomain())
	}

	return entries, nil
}
