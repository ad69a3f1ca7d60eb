package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-pos/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KVRepo)(nil)

// KVTable tabla donde se guarda el estado de sesión.
const KVTable = "backoffice_kv"

// KVRepo implementación de KeyValueStore sobre PostgreSQL.
type KVRepo struct {
	q Querier
}

// NewKVRepository construye el adaptador. Acepta pool o tx (Querier).
func NewKVRepository(q Querier) *KVRepo {
	return &KVRepo{q: q}
}

// EnsureSchema crea la tabla si no existe.
func (r *KVRepo) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + KVTable + ` (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", KVTable, err)
	}
	return nil
}

// Get lee una clave; ok=false si no existe.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.q.QueryRow(ctx, `SELECT value FROM `+KVTable+` WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select kv %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserta o reemplaza el valor (upsert).
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO ` + KVTable + ` (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	return nil
}

// Delete borra las claves en una sola sentencia. Claves inexistentes no son error.
func (r *KVRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM `+KVTable+` WHERE key = ANY($1)`, keys); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}
