package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

const newsColumns = `n.id, n.title, n.slug, n.content, n.image,
	n.created_by, COALESCE(n.updated_by, 0),
	COALESCE(cu.name, ''), COALESCE(uu.name, ''),
	n.created_at, COALESCE(n.updated_at, 0)`

const newsJoins = `
	FROM news n
	LEFT JOIN users cu ON cu.id = n.created_by
	LEFT JOIN users uu ON uu.id = n.updated_by`

func scanNews(row pgx.Row) (models.News, error) {
	var n models.News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.Content,
		&n.Image,
		&n.CreatedBy,
		&n.UpdatedBy,
		&n.CreatedByName,
		&n.UpdatedByName,
		&n.CreatedAt,
		&n.UpdatedAt,
	)

	return n, err
}

func (r *PostgresRepo) SaveNews(ctx context.Context, news models.News) (int64, error) {
	const op = "storage.postgres.SaveNews"

	query := `
		INSERT INTO news (title, slug, content, image, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		news.Title, news.Slug, news.Content, news.Image, news.CreatedBy, news.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) listNews(ctx context.Context, query string, args ...any) ([]models.News, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.News

	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) News(ctx context.Context) ([]models.News, error) {
	query := `SELECT ` + newsColumns + newsJoins + ` ORDER BY n.created_at DESC;`

	return r.listNews(ctx, query)
}

// HeadlineNews returns the five most recent entries.
func (r *PostgresRepo) HeadlineNews(ctx context.Context) ([]models.News, error) {
	query := `SELECT ` + newsColumns + newsJoins + ` ORDER BY n.created_at DESC LIMIT 5;`

	return r.listNews(ctx, query)
}

func (r *PostgresRepo) NewsBySlug(ctx context.Context, slug string) (models.News, error) {
	query := `SELECT ` + newsColumns + newsJoins + ` WHERE n.slug = $1;`

	n, err := scanNews(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.News{}, storage.ErrNewsNotFound
		}

		return models.News{}, err
	}

	return n, nil
}

func (r *PostgresRepo) NewsByID(ctx context.Context, id int64) (models.News, error) {
	query := `SELECT ` + newsColumns + newsJoins + ` WHERE n.id = $1;`

	n, err := scanNews(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.News{}, storage.ErrNewsNotFound
		}

		return models.News{}, err
	}

	return n, nil
}

func (r *PostgresRepo) UpdateNews(ctx context.Context, news models.News) error {
	const op = "storage.postgres.UpdateNews"

	query := `
		UPDATE news
		SET title = $1, slug = $2, content = $3, image = $4, updated_by = $5, updated_at = $6
		WHERE id = $7;
	`

	_, err := r.pool.Exec(ctx, query,
		news.Title, news.Slug, news.Content, news.Image, news.UpdatedBy, news.UpdatedAt, news.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteNews(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteNews"

	_, err := r.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
