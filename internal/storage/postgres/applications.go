package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

func (r *PostgresRepo) SaveApplication(ctx context.Context, app models.UserApp) (int64, error) {
	const op = "storage.postgres.SaveApplication"

	query := `
		INSERT INTO user_apps (user_id, quiz_id, score, answer, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		app.UserID, app.QuizID, app.Score, app.Answer, app.Status, app.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Applications(ctx context.Context) ([]models.UserApp, error) {
	query := `
		SELECT a.id, a.user_id, a.quiz_id, COALESCE(a.admin_id, 0), a.status, a.score, a.answer,
		       COALESCE(u.name, ''), COALESCE(adm.name, ''), COALESCE(q.title, ''),
		       a.created_at, COALESCE(a.updated_at, 0)
		FROM user_apps a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN users adm ON adm.id = a.admin_id
		LEFT JOIN quizzes q ON q.id = a.quiz_id
		ORDER BY a.created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.UserApp

	for rows.Next() {
		var a models.UserApp
		err := rows.Scan(
			&a.ID, &a.UserID, &a.QuizID, &a.AdminID, &a.Status, &a.Score, &a.Answer,
			&a.UserName, &a.AdminName, &a.QuizTitle,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) ApplicationByID(ctx context.Context, id int64) (models.UserApp, error) {
	query := `
		SELECT id, user_id, quiz_id, COALESCE(admin_id, 0), status, score, answer, created_at, COALESCE(updated_at, 0)
		FROM user_apps
		WHERE id = $1;
	`

	var a models.UserApp
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.QuizID, &a.AdminID, &a.Status, &a.Score, &a.Answer, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserApp{}, storage.ErrApplicationNotFound
		}

		return models.UserApp{}, err
	}

	return a, nil
}

func (r *PostgresRepo) UpdateApplication(ctx context.Context, id, adminID int64, status int, updatedAt int64) error {
	const op = "storage.postgres.UpdateApplication"

	query := `
		UPDATE user_apps
		SET admin_id = $1, status = $2, updated_at = $3
		WHERE id = $4;
	`

	_, err := r.pool.Exec(ctx, query, adminID, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
