package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"ucp_service/internal/config"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
	"ucp_service/internal/storage/postgres/migrations"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	// The pool is the only backpressure in the service; the game server
	// shares this database, keep our footprint small.
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := runMigrations(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

// runMigrations applies the embedded goose migrations over a short-lived
// database/sql connection; the pgx pool stays query-only.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration conn: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (name, email, password_hash, registered_at, admin, helper, status, register_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		string(user.PassHash),
		user.RegisteredAt,
		user.Admin,
		user.Helper,
		user.Status,
		user.RegisterIP,
	).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_email_key" {
				return 0, storage.ErrEmailExists
			}
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

const userColumns = `id, name, email, email_verified, password_hash, admin, helper, status,
	registered_at, lastlogin, register_ip, login_ip, ucp_login_ip`

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.EmailVerified,
		&u.PassHash,
		&u.Admin,
		&u.Helper,
		&u.Status,
		&u.RegisteredAt,
		&u.LastLogin,
		&u.RegisterIP,
		&u.LoginIP,
		&u.UCPLoginIP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

// UserByUsermail resolves either an account name or an email address.
func (r *PostgresRepo) UserByUsermail(ctx context.Context, usermail string) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE name = $1 OR email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, usermail))
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	query := `UPDATE users SET email_verified = TRUE WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, userID int64, passHash []byte) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, string(passHash), userID)

	return err
}

// UpdateEmail swaps the address and drops the verified flag; the new
// address has not been proven yet.
func (r *PostgresRepo) UpdateEmail(ctx context.Context, userID int64, email string) error {
	const op = "storage.postgres.UpdateEmail"

	query := `UPDATE users SET email = $1, email_verified = FALSE WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, email, userID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			return storage.ErrEmailExists
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UpdateUCPLoginIP(ctx context.Context, userID int64, ip string) error {
	query := `UPDATE users SET ucp_login_ip = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, ip, userID)

	return err
}

func (r *PostgresRepo) UpdateUserStatus(ctx context.Context, userID int64, status int) error {
	query := `UPDATE users SET status = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, status, userID)

	return err
}

func (r *PostgresRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)

	return count, err
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
