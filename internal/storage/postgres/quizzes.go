package postgres

import (
	"context"
	"fmt"

	"ucp_service/internal/models"
)

func (r *PostgresRepo) SaveQuiz(ctx context.Context, quiz models.Quiz) (int64, error) {
	const op = "storage.postgres.SaveQuiz"

	query := `
		INSERT INTO quizzes (type_id, title, question, image, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		quiz.TypeID, quiz.Title, quiz.Question, quiz.Image, quiz.CreatedBy, quiz.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) QuizTypes(ctx context.Context) ([]models.QuizType, error) {
	query := `
		SELECT id, name, active, created_by, COALESCE(updated_by, 0), created_at, COALESCE(updated_at, 0)
		FROM quiz_types
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.QuizType

	for rows.Next() {
		var qt models.QuizType
		if err := rows.Scan(&qt.ID, &qt.Name, &qt.Active, &qt.CreatedBy, &qt.UpdatedBy, &qt.CreatedAt, &qt.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, qt)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) SaveQuizType(ctx context.Context, qt models.QuizType) (int64, error) {
	const op = "storage.postgres.SaveQuizType"

	query := `
		INSERT INTO quiz_types (name, active, created_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, qt.Name, qt.Active, qt.CreatedBy, qt.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UpdateQuizType(ctx context.Context, qt models.QuizType) error {
	const op = "storage.postgres.UpdateQuizType"

	query := `
		UPDATE quiz_types
		SET name = $1, active = $2, updated_by = $3, updated_at = $4
		WHERE id = $5;
	`

	_, err := r.pool.Exec(ctx, query, qt.Name, qt.Active, qt.UpdatedBy, qt.UpdatedAt, qt.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteQuizType(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteQuizType"

	_, err := r.pool.Exec(ctx, `DELETE FROM quiz_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveQuizAnswers inserts a batch of answer options for one quiz.
func (r *PostgresRepo) SaveQuizAnswers(ctx context.Context, answers []models.QuizAnswer) error {
	const op = "storage.postgres.SaveQuizAnswers"

	query := `
		INSERT INTO quiz_answers (quiz_id, answer, correct_answer, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (quiz_id, answer) DO UPDATE
		SET correct_answer = EXCLUDED.correct_answer,
		    updated_by = EXCLUDED.created_by,
		    updated_at = EXCLUDED.created_at;
	`

	for _, a := range answers {
		if _, err := r.pool.Exec(ctx, query, a.QuizID, a.Answer, a.CorrectAnswer, a.CreatedBy, a.CreatedAt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (r *PostgresRepo) DeleteQuizAnswer(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteQuizAnswer"

	_, err := r.pool.Exec(ctx, `DELETE FROM quiz_answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
