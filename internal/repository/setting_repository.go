package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// SettingRepository manages stored setting overrides. Absent rows mean the
// hardcoded default applies.
type SettingRepository interface {
	Get(ctx context.Context, key domain.SettingKey) (*domain.Setting, error)
	Upsert(ctx context.Context, setting *domain.Setting) error
	Delete(ctx context.Context, key domain.SettingKey) error
	List(ctx context.Context) ([]domain.Setting, error)
}

type settingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository constructs repository.
func NewSettingRepository(pool *pgxpool.Pool) SettingRepository {
	return &settingRepository{pool: pool}
}

func (r *settingRepository) Get(ctx context.Context, key domain.SettingKey) (*domain.Setting, error) {
	const query = `SELECT key, value, updated_by, updated_at FROM settings WHERE key=$1`
	var setting domain.Setting
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&setting.Key,
		&setting.Value,
		&setting.UpdatedBy,
		&setting.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert creates the row on first write.
func (r *settingRepository) Upsert(ctx context.Context, setting *domain.Setting) error {
	const query = `
        INSERT INTO settings (key, value, updated_by, updated_at)
        VALUES ($1,$2,$3,NOW())
        ON CONFLICT (key) DO UPDATE SET value=$2, updated_by=$3, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, setting.Key, setting.Value, setting.UpdatedBy).
		Scan(&setting.UpdatedAt)
}

func (r *settingRepository) Delete(ctx context.Context, key domain.SettingKey) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE key=$1`, key)
	return err
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_by, updated_at FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Setting
	for rows.Next() {
		var setting domain.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedBy, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}
