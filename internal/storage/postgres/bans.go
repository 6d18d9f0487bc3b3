package postgres

import (
	"context"
	"fmt"

	"ucp_service/internal/models"
)

func (r *PostgresRepo) Bans(ctx context.Context) ([]models.Ban, error) {
	query := `
		SELECT id, account, issuer, reason, timestamp, timestamp_expired
		FROM bans
		ORDER BY timestamp DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Ban

	for rows.Next() {
		var b models.Ban
		if err := rows.Scan(&b.ID, &b.Account, &b.Issuer, &b.Reason, &b.Timestamp, &b.TimestampExpired); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) DeleteBan(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteBan"

	_, err := r.pool.Exec(ctx, `DELETE FROM bans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
