package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// PGTier keeps durable keys in the client_tokens table, namespaced by profile.
type PGTier struct {
	DB      *sql.DB
	Profile string
}

func (t *PGTier) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
SELECT value
FROM client_tokens
WHERE profile = $1 AND key = $2
LIMIT 1`
	var value string
	err := t.DB.QueryRowContext(ctx, query, t.Profile, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (t *PGTier) Set(ctx context.Context, key, value string) error {
	_, err := t.DB.ExecContext(ctx, upsertTokenQuery, t.Profile, key, value)
	return err
}

const upsertTokenQuery = `
INSERT INTO client_tokens (profile, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile, key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = now()`

func (t *PGTier) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsertTokenQuery, t.Profile, k, v); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (t *PGTier) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, t.Profile)
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		args = append(args, k)
		placeholders[i] = "$" + strconv.Itoa(i+2)
	}
	query := `
DELETE FROM client_tokens
WHERE profile = $1 AND key IN (` + strings.Join(placeholders, ", ") + `)`
	_, err := t.DB.ExecContext(ctx, query, args...)
	return err
}
