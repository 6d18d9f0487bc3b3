package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

const characterColumns = `id, user_id, name, gender, birth_day, birth_month, birth_year,
	skin_id, level, exp, money, bank, play_hour, job_type, faction_id, faction_rank,
	health, armour, lastlogin`

func scanCharacter(row pgx.Row) (models.Character, error) {
	var c models.Character
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Gender,
		&c.BirthDay,
		&c.BirthMonth,
		&c.BirthYear,
		&c.SkinID,
		&c.Level,
		&c.Exp,
		&c.Money,
		&c.Bank,
		&c.PlayHour,
		&c.JobType,
		&c.FactionID,
		&c.FactionRank,
		&c.Health,
		&c.Armour,
		&c.LastLogin,
	)

	return c, err
}

func (r *PostgresRepo) listCharacters(ctx context.Context, query string, args ...any) ([]models.Character, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Character

	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) CharactersByUser(ctx context.Context, userID int64) ([]models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE user_id = $1 ORDER BY lastlogin DESC;`

	return r.listCharacters(ctx, query, userID)
}

func (r *PostgresRepo) CharactersByFaction(ctx context.Context, factionID int64) ([]models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE faction_id = $1 ORDER BY faction_rank DESC;`

	return r.listCharacters(ctx, query, factionID)
}

func (r *PostgresRepo) CharacterByID(ctx context.Context, id int64) (models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1;`

	c, err := scanCharacter(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Character{}, storage.ErrCharacterNotFound
		}

		return models.Character{}, err
	}

	return c, nil
}

func (r *PostgresRepo) SaveCharacter(ctx context.Context, char models.Character) (int64, error) {
	const op = "storage.postgres.SaveCharacter"

	query := `
		INSERT INTO characters (user_id, name, gender, birth_day, birth_month, birth_year, skin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		char.UserID, char.Name, char.Gender, char.BirthDay, char.BirthMonth, char.BirthYear, char.SkinID,
	).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == uniqueViolation {
			return 0, storage.ErrCharacterExists
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) DeleteCharacter(ctx context.Context, id, userID int64) error {
	const op = "storage.postgres.DeleteCharacter"

	_, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) CountCharactersByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM characters WHERE user_id = $1`, userID).Scan(&count)

	return count, err
}

func (r *PostgresRepo) AdminWarnsByCharacter(ctx context.Context, charID int64) ([]models.AdminWarn, error) {
	query := `
		SELECT id, char_id, issuer, reason, timestamp
		FROM admin_warns
		WHERE char_id = $1
		ORDER BY timestamp DESC;
	`

	rows, err := r.pool.Query(ctx, query, charID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.AdminWarn

	for rows.Next() {
		var w models.AdminWarn
		if err := rows.Scan(&w.ID, &w.CharID, &w.Issuer, &w.Reason, &w.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, w)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) InventoryByCharacter(ctx context.Context, charID int64) ([]models.InventoryItem, error) {
	query := `
		SELECT id, char_id, item, amount
		FROM inventories
		WHERE char_id = $1
		ORDER BY amount DESC;
	`

	rows, err := r.pool.Query(ctx, query, charID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.InventoryItem

	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.CharID, &item.Item, &item.Amount); err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) VehiclesByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error) {
	query := `
		SELECT id, owner_id, model_id, plate, mileage
		FROM vehicles
		WHERE owner_id = $1
		ORDER BY mileage DESC;
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Vehicle

	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.ModelID, &v.Plate, &v.Mileage); err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) PropertiesByOwner(ctx context.Context, ownerID int64) ([]models.Property, error) {
	query := `
		SELECT id, owner_id, name, price
		FROM properties
		WHERE owner_id = $1
		ORDER BY price DESC;
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Property

	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

func (r *PostgresRepo) CountOwnedVehicles(ctx context.Context) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles WHERE owner_id <> 0`).Scan(&count)

	return count, err
}

func (r *PostgresRepo) CountOwnedProperties(ctx context.Context) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE owner_id <> 0`).Scan(&count)

	return count, err
}
