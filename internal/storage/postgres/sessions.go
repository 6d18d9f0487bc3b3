package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

// One-time session codes. A code is valid while its row exists (and, when
// maxAge > 0, while it is young enough); consumption deletes every code of
// the same purpose for the user so stale links cannot replay a finished
// flow.

func (r *PostgresRepo) SaveSessionCode(ctx context.Context, userID int64, code, purpose string) error {
	const op = "storage.postgres.SaveSessionCode"

	query := `
		INSERT INTO user_sessions (user_id, code, purpose, created_at)
		VALUES ($1, $2, $3, $4);
	`

	_, err := r.pool.Exec(ctx, query, userID, code, purpose, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SessionCode(ctx context.Context, code, purpose string, maxAge time.Duration) (models.SessionCode, error) {
	query := `
		SELECT id, user_id, code, purpose, created_at
		FROM user_sessions
		WHERE code = $1 AND purpose = $2;
	`

	var sc models.SessionCode
	err := r.pool.QueryRow(ctx, query, code, purpose).Scan(
		&sc.ID,
		&sc.UserID,
		&sc.Code,
		&sc.Purpose,
		&sc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SessionCode{}, storage.ErrSessionCodeNotFound
		}

		return models.SessionCode{}, err
	}

	if maxAge > 0 && time.Since(sc.CreatedAt) > maxAge {
		return models.SessionCode{}, storage.ErrSessionCodeNotFound
	}

	return sc, nil
}

func (r *PostgresRepo) DeleteSessionCodes(ctx context.Context, userID int64, purpose string) error {
	const op = "storage.postgres.DeleteSessionCodes"

	query := `DELETE FROM user_sessions WHERE user_id = $1 AND purpose = $2`

	_, err := r.pool.Exec(ctx, query, userID, purpose)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
